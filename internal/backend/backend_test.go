package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/NomuraAI/SIGADES-sub000/internal/config"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestOpen_Local(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Local.Path = filepath.Join(t.TempDir(), "nested", "sigades.db")

	stores, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	require.Equal(t, repository.KindLocal, stores.Backend.Kind())
	_, err = stores.Backend.Create(ctx, project.Project{VillageCode: "1"})
	require.NoError(t, err)
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Local.Path = ":memory:"
	cfg.Backend = "ftp"

	_, err := Open(context.Background(), cfg, nil)
	require.Error(t, err)
}
