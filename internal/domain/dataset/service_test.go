package dataset_test

import (
	"context"
	"testing"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/activity"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/dataset"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/normalize"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository/mocks"
	"github.com/NomuraAI/SIGADES-sub000/internal/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type harness struct {
	svc        *dataset.Service
	backend    *sqlite.LocalBackend
	activities *sqlite.ActivityRepository
}

func newHarness(t *testing.T) harness {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	backend := sqlite.NewLocalBackend(db, sqlite.LocalOptions{})
	activities := sqlite.NewActivityRepository(db)
	svc := dataset.NewService(backend, nil, activities, dataset.Options{PageSize: 3, BatchSize: 2}, nil)
	return harness{svc: svc, backend: backend, activities: activities}
}

func sampleRows() []normalize.RawRow {
	return []normalize.RawRow{
		{"Kode Desa": "3301012001", "Nama Kegiatan": "Jalan Desa", "Sub Kegiatan": "Rabat Beton", "Pagu": "100.000"},
		{"Kode Desa": "3301012001", "Nama Kegiatan": "Jalan Desa", "Sub Kegiatan": "Drainase", "Pagu": "50.000"},
		{"Kode Desa": "3301012002", "Nama Kegiatan": "Posyandu", "Pagu": "25.000"},
		{"Kode Desa": "3301012003", "Nama Kegiatan": "Irigasi", "Pagu": "75.000"},
		{"Kode Desa": "3301012004", "Nama Kegiatan": "Sumur Bor", "Pagu": "10.000"},
	}
}

func countRecords(t *testing.T, b *sqlite.LocalBackend) int {
	t.Helper()
	all, _, err := b.ListPage(context.Background(), nil, 0, 1000)
	require.NoError(t, err)
	return len(all)
}

func TestService_SmartUpdateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	first, err := h.svc.Import(ctx, dataset.ImportRequest{Version: "2025", Rows: sampleRows()})
	require.NoError(t, err)
	assert.Equal(t, 5, first.Processed)
	assert.Equal(t, 5, first.Inserted)
	assert.Zero(t, first.Updated)

	second, err := h.svc.Import(ctx, dataset.ImportRequest{Version: "2025", Rows: sampleRows()})
	require.NoError(t, err)
	assert.Zero(t, second.Inserted)
	assert.Equal(t, 5, second.Updated)
	assert.Equal(t, 5, countRecords(t, h.backend))

	entries, err := h.activities.List(ctx, activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, activity.TypeImport, entries[0].ActivityType)
	assert.Equal(t, "local", entries[0].Backend)
	assert.Equal(t, second.Message(), entries[0].Summary)
}

func TestService_SmartUpdateChangesValuesInPlace(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.svc.Import(ctx, dataset.ImportRequest{Version: "2025", Rows: sampleRows()})
	require.NoError(t, err)
	before, err := h.svc.Export(ctx, "2025", false)
	require.NoError(t, err)

	rows := sampleRows()
	rows[0]["Pagu"] = "999"
	_, err = h.svc.Import(ctx, dataset.ImportRequest{Version: "2025", Rows: rows})
	require.NoError(t, err)

	after, err := h.svc.Export(ctx, "2025", false)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, int64(999), after[0].Allocation)
}

func TestService_VersionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.svc.Import(ctx, dataset.ImportRequest{Version: "A", Rows: sampleRows()})
	require.NoError(t, err)
	summary, err := h.svc.Import(ctx, dataset.ImportRequest{Version: "B", Rows: sampleRows()})
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Inserted)

	versions, err := h.svc.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, versions)

	removed, err := h.svc.ClearVersion(ctx, "A", true)
	require.NoError(t, err)
	assert.Equal(t, 5, removed)

	versions, err = h.svc.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, versions)
}

func TestService_ReplaceAppendNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.svc.Import(ctx, dataset.ImportRequest{Mode: dataset.ModeReplaceAppend, Rows: sampleRows()})
	require.ErrorIs(t, err, dataset.ErrConfirmationRequired)
	assert.Zero(t, countRecords(t, h.backend))

	for range 2 {
		summary, err := h.svc.Import(ctx, dataset.ImportRequest{Mode: dataset.ModeReplaceAppend, Rows: sampleRows(), Confirmed: true})
		require.NoError(t, err)
		assert.Equal(t, project.DefaultVersion, summary.Version)
		assert.Equal(t, 5, summary.Inserted)
	}
	assert.Equal(t, 10, countRecords(t, h.backend))

	// Reconciling over duplicates updates the last copy and reports the rest.
	summary, err := h.svc.Import(ctx, dataset.ImportRequest{Rows: sampleRows()})
	require.NoError(t, err)
	assert.Zero(t, summary.Inserted)
	assert.Len(t, summary.Orphaned, 5)
	assert.Contains(t, summary.Message(), "5 duplicate stored records")
}

func TestService_ClearNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.svc.ClearAll(ctx, false)
	require.ErrorIs(t, err, dataset.ErrConfirmationRequired)

	_, err = h.svc.Import(ctx, dataset.ImportRequest{Rows: sampleRows()})
	require.NoError(t, err)
	removed, err := h.svc.ClearAll(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 5, removed)

	versions, err := h.svc.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{project.DefaultVersion}, versions)
}

func TestService_RemoteImportNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	backend.On("Kind").Return(repository.KindRemote)

	svc := dataset.NewService(backend, nil, nil, dataset.Options{}, nil)
	_, err := svc.Import(ctx, dataset.ImportRequest{Rows: sampleRows()})
	require.ErrorIs(t, err, dataset.ErrConfirmationRequired)
	backend.AssertNotCalled(t, "ListPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RemoteClearIsDenied(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	backend.On("Kind").Return(repository.KindRemote)
	backend.On("ClearAll", ctx).Return(0, repository.ErrPermissionDenied)

	svc := dataset.NewService(backend, nil, nil, dataset.Options{}, nil)
	_, err := svc.ClearAll(ctx, true)
	require.ErrorIs(t, err, repository.ErrPermissionDenied)
}

func TestService_ImportFailureKeepsPartialCounts(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	backend.On("Kind").Return(repository.KindRemote)
	backend.On("ListPage", ctx, mock.Anything, 0, dataset.DefaultPageSize).Return([]project.Project{}, false, nil)
	backend.On("BatchWrite", ctx, mock.Anything).
		Return(make([]project.Project, 2), repository.ErrTransient).Once()

	svc := dataset.NewService(backend, nil, nil, dataset.Options{BatchSize: 2}, nil)
	summary, err := svc.Import(ctx, dataset.ImportRequest{Version: "2025", Rows: sampleRows(), Confirmed: true})
	require.ErrorIs(t, err, repository.ErrTransient)
	require.NotNil(t, summary)
	assert.Equal(t, 5, summary.Processed)
	assert.Equal(t, 2, summary.Inserted)
}

func TestParseMode(t *testing.T) {
	mode, err := dataset.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, dataset.ModeSmartUpdate, mode)

	mode, err = dataset.ParseMode("Replace_Append")
	require.NoError(t, err)
	assert.Equal(t, dataset.ModeReplaceAppend, mode)

	_, err = dataset.ParseMode("merge")
	require.ErrorIs(t, err, dataset.ErrInvalidMode)
}
