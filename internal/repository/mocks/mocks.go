package mocks

import (
	"context"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/activity"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
	"github.com/stretchr/testify/mock"
)

// Backend is a mock for a record storage backend.
type Backend struct {
	mock.Mock
}

func (m *Backend) Kind() repository.Kind {
	args := m.Called()
	return args.Get(0).(repository.Kind)
}

func (m *Backend) ListPage(ctx context.Context, version *string, pageIndex, pageSize int) ([]project.Project, bool, error) {
	args := m.Called(ctx, version, pageIndex, pageSize)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *Backend) ListVersions(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]string); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) Create(ctx context.Context, rec project.Project) (project.Project, error) {
	args := m.Called(ctx, rec)
	if created, ok := args.Get(0).(project.Project); ok {
		return created, args.Error(1)
	}
	return project.Project{}, args.Error(1)
}

func (m *Backend) Update(ctx context.Context, id string, rec project.Project) (project.Project, error) {
	args := m.Called(ctx, id, rec)
	if updated, ok := args.Get(0).(project.Project); ok {
		return updated, args.Error(1)
	}
	return project.Project{}, args.Error(1)
}

func (m *Backend) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Backend) BatchWrite(ctx context.Context, recs []project.Project) ([]project.Project, error) {
	args := m.Called(ctx, recs)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) ClearVersion(ctx context.Context, version string) (int, error) {
	args := m.Called(ctx, version)
	return args.Int(0), args.Error(1)
}

func (m *Backend) ClearAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// VersionInvalidator is a mock for the version cache invalidation hook.
type VersionInvalidator struct {
	mock.Mock
}

func (m *VersionInvalidator) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
