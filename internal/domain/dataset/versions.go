package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
)

// VersionRegistry lists the scenario versions present in a store.
type VersionRegistry struct {
	lister VersionLister
	cache  VersionCache
	logger *slog.Logger
}

// NewVersionRegistry creates a registry. cache may be nil.
func NewVersionRegistry(lister VersionLister, cache VersionCache, logger *slog.Logger) *VersionRegistry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &VersionRegistry{lister: lister, cache: cache, logger: logger}
}

// List returns the sorted distinct version tags, or only DefaultVersion when
// the store is empty. Cache failures fall back to the store.
func (r *VersionRegistry) List(ctx context.Context) ([]string, error) {
	if r.cache != nil {
		versions, ok, err := r.cache.Get(ctx)
		if err != nil {
			r.logger.Warn("version cache read failed", "error", err)
		} else if ok && len(versions) > 0 {
			return versions, nil
		}
	}

	versions, err := r.lister.ListVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	if len(versions) == 0 {
		versions = []string{project.DefaultVersion}
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, versions); err != nil {
			r.logger.Warn("version cache write failed", "error", err)
		}
	}
	return versions, nil
}

// Invalidate drops any cached list.
func (r *VersionRegistry) Invalidate(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Invalidate(ctx)
}
