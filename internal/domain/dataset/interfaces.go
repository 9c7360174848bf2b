package dataset

import (
	"context"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/activity"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
)

// PageLister reads one page of records in creation order.
type PageLister interface {
	ListPage(ctx context.Context, version *string, pageIndex, pageSize int) ([]project.Project, bool, error)
}

// WriteStore applies classified writes.
type WriteStore interface {
	Update(ctx context.Context, id string, rec project.Project) (project.Project, error)
	BatchWrite(ctx context.Context, recs []project.Project) ([]project.Project, error)
}

// VersionLister lists the distinct version tags present in a store.
type VersionLister interface {
	ListVersions(ctx context.Context) ([]string, error)
}

// Store is everything the import service needs from a backend.
type Store interface {
	PageLister
	WriteStore
	VersionLister
	Kind() repository.Kind
	ClearVersion(ctx context.Context, version string) (int, error)
	ClearAll(ctx context.Context) (int, error)
}

// VersionCache keeps a previously computed version list.
type VersionCache interface {
	Get(ctx context.Context) ([]string, bool, error)
	Set(ctx context.Context, versions []string) error
	Invalidate(ctx context.Context) error
}

// ActivityLogger records one entry per operation.
type ActivityLogger interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
