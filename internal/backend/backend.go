// Package backend defines the storage contract and opens the configured
// implementation once per process.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/NomuraAI/SIGADES-sub000/internal/config"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/postgres"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
	"github.com/NomuraAI/SIGADES-sub000/internal/sqlite"
)

// Backend is the storage contract shared by the remote and local stores.
type Backend interface {
	Kind() repository.Kind
	ListPage(ctx context.Context, version *string, pageIndex, pageSize int) ([]project.Project, bool, error)
	ListVersions(ctx context.Context) ([]string, error)
	Create(ctx context.Context, rec project.Project) (project.Project, error)
	Update(ctx context.Context, id string, rec project.Project) (project.Project, error)
	Delete(ctx context.Context, id string) error
	BatchWrite(ctx context.Context, recs []project.Project) ([]project.Project, error)
	ClearVersion(ctx context.Context, version string) (int, error)
	ClearAll(ctx context.Context) (int, error)
}

var (
	_ Backend = (*postgres.RemoteBackend)(nil)
	_ Backend = (*sqlite.LocalBackend)(nil)
)

// Stores bundles the selected backend with the local database that also
// keeps the activity log. Close releases both.
type Stores struct {
	Backend Backend
	Local   *sqlite.DB
	closers []io.Closer
}

// Close closes every opened database.
func (s *Stores) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open opens the local database and the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Stores, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := ensureDBDir(cfg.Local.Path); err != nil {
		return nil, fmt.Errorf("prepare local database path: %w", err)
	}
	local, err := sqlite.New(cfg.Local.Path)
	if err != nil {
		return nil, err
	}
	stores := &Stores{Local: local, closers: []io.Closer{local}}

	if err := local.RunMigrations(); err != nil {
		_ = stores.Close()
		return nil, err
	}

	switch cfg.Backend {
	case config.BackendRemote:
		db, err := postgres.Open(ctx, cfg.Remote.DSN)
		if err != nil {
			_ = stores.Close()
			return nil, err
		}
		stores.closers = append(stores.closers, db)
		stores.Backend = postgres.NewRemoteBackend(db, postgres.Options{
			MaxPageSize:      cfg.Remote.MaxPageSize,
			BatchSize:        cfg.Sync.BatchSize,
			VersionScanPages: cfg.Sync.VersionScanPages,
		})
	case config.BackendLocal:
		stores.Backend = sqlite.NewLocalBackend(local, sqlite.LocalOptions{
			Key:       cfg.Local.Key,
			Latency:   cfg.Local.Latency,
			BatchSize: cfg.Sync.BatchSize,
		})
	default:
		_ = stores.Close()
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	logger.Info("storage backend selected", "backend", stores.Backend.Kind(), "local_path", cfg.Local.Path)
	return stores, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
