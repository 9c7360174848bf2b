package project

import (
	"context"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/activity"
)

// Backend provides the record operations needed for manual entry.
type Backend interface {
	ListPage(ctx context.Context, version *string, pageIndex, pageSize int) ([]Project, bool, error)
	Create(ctx context.Context, rec Project) (Project, error)
	Update(ctx context.Context, id string, rec Project) (Project, error)
	Delete(ctx context.Context, id string) error
}

// ActivityRepository logs record activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}

// VersionInvalidator drops any cached version list after a write.
type VersionInvalidator interface {
	Invalidate(ctx context.Context) error
}
