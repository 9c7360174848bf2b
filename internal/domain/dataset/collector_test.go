package dataset_test

import (
	"context"
	"errors"
	"testing"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/dataset"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func makeRecords(n int) []project.Project {
	return make([]project.Project, n)
}

func TestCollector_CollectsUntilShortPage(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	version := "2025"

	backend.On("ListPage", ctx, &version, 0, 1000).Return(makeRecords(1000), true, nil).Once()
	backend.On("ListPage", ctx, &version, 1, 1000).Return(makeRecords(1000), true, nil).Once()
	backend.On("ListPage", ctx, &version, 2, 1000).Return(makeRecords(400), false, nil).Once()

	all, err := dataset.NewCollector(backend, 0).Collect(ctx, &version)
	require.NoError(t, err)
	require.Len(t, all, 2400)
	backend.AssertNumberOfCalls(t, "ListPage", 3)
}

func TestCollector_EmptyStore(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	backend.On("ListPage", ctx, (*string)(nil), 0, 10).Return([]project.Project{}, false, nil).Once()

	all, err := dataset.NewCollector(backend, 10).Collect(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestCollector_FailsAsUnit(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}

	backend.On("ListPage", ctx, mock.Anything, 0, 2).Return(makeRecords(2), true, nil).Once()
	backend.On("ListPage", ctx, mock.Anything, 1, 2).
		Return(nil, false, errors.Join(repository.ErrTransient, errors.New("reset"))).Once()

	all, err := dataset.NewCollector(backend, 2).Collect(ctx, nil)
	require.ErrorIs(t, err, repository.ErrTransient)
	require.Nil(t, all)
}
