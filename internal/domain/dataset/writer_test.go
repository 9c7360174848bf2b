package dataset_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/dataset"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func inserts(n int) []dataset.Write {
	writes := make([]dataset.Write, n)
	for i := range writes {
		writes[i] = dataset.Write{Op: dataset.OpInsert, Record: project.Project{VillageCode: fmt.Sprint(i)}}
	}
	return writes
}

func batchOf(n int) any {
	return mock.MatchedBy(func(recs []project.Project) bool { return len(recs) == n })
}

func TestWriter_ClampsOversizedBatches(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	backend.On("BatchWrite", ctx, batchOf(dataset.DefaultBatchSize)).Return(make([]project.Project, dataset.DefaultBatchSize), nil).Twice()

	res, err := dataset.NewWriter(backend, 500, nil).Apply(ctx, inserts(100))
	require.NoError(t, err)
	assert.Equal(t, 100, res.Inserted)
	backend.AssertNumberOfCalls(t, "BatchWrite", 2)
}

func TestWriter_FlushesInsertsInBatches(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	backend.On("BatchWrite", ctx, batchOf(50)).Return(make([]project.Project, 50), nil).Twice()
	backend.On("BatchWrite", ctx, batchOf(20)).Return(make([]project.Project, 20), nil).Once()

	res, err := dataset.NewWriter(backend, 50, nil).Apply(ctx, inserts(120))
	require.NoError(t, err)
	assert.Equal(t, 120, res.Inserted)
	backend.AssertNumberOfCalls(t, "BatchWrite", 3)
}

func TestWriter_UpdatesIndividuallyAndSkipsMissing(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	backend.On("Update", ctx, "a", mock.Anything).Return(project.Project{ID: "a"}, nil).Once()
	backend.On("Update", ctx, "gone", mock.Anything).
		Return(project.Project{}, fmt.Errorf("update gone: %w", repository.ErrNotFound)).Once()
	backend.On("Update", ctx, "c", mock.Anything).Return(project.Project{ID: "c"}, nil).Once()
	backend.On("BatchWrite", ctx, batchOf(1)).Return(make([]project.Project, 1), nil).Once()

	writes := []dataset.Write{
		{Op: dataset.OpUpdate, Record: project.Project{ID: "a"}},
		{Op: dataset.OpInsert, Record: project.Project{VillageCode: "n"}},
		{Op: dataset.OpUpdate, Record: project.Project{ID: "gone"}},
		{Op: dataset.OpUpdate, Record: project.Project{ID: "c"}},
	}
	res, err := dataset.NewWriter(backend, 50, nil).Apply(ctx, writes)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, []string{"gone"}, res.Missing)
	backend.AssertExpectations(t)
}

func TestWriter_AbortsOnOtherErrors(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	backend.On("BatchWrite", ctx, batchOf(2)).Return(make([]project.Project, 2), nil).Once()
	backend.On("Update", ctx, "x", mock.Anything).
		Return(project.Project{}, fmt.Errorf("update x: %w", repository.ErrTransient)).Once()

	writes := append(inserts(2), dataset.Write{Op: dataset.OpUpdate, Record: project.Project{ID: "x"}})
	writes = append(writes, inserts(3)...)

	res, err := dataset.NewWriter(backend, 2, nil).Apply(ctx, writes)
	require.ErrorIs(t, err, repository.ErrTransient)
	assert.Equal(t, 2, res.Inserted)
	assert.Zero(t, res.Updated)
	backend.AssertNumberOfCalls(t, "BatchWrite", 1)
}

func TestWriter_PartialBatchCounts(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	backend.On("BatchWrite", ctx, batchOf(3)).
		Return(make([]project.Project, 1), fmt.Errorf("chunk 2: %w", repository.ErrTransient)).Once()

	res, err := dataset.NewWriter(backend, 50, nil).Apply(ctx, inserts(3))
	require.ErrorIs(t, err, repository.ErrTransient)
	assert.Equal(t, 1, res.Inserted)
}
