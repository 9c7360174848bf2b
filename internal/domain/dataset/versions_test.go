package dataset_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NomuraAI/SIGADES-sub000/internal/cache"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/dataset"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository/mocks"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestVersionRegistry_DefaultWhenEmpty(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	backend.On("ListVersions", ctx).Return([]string{}, nil)

	versions, err := dataset.NewVersionRegistry(backend, nil, nil).List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Default"}, versions)
}

func TestVersionRegistry_PropagatesErrors(t *testing.T) {
	ctx := context.Background()
	backend := &mocks.Backend{}
	backend.On("ListVersions", ctx).Return(nil, errors.New("down"))

	_, err := dataset.NewVersionRegistry(backend, nil, nil).List(ctx)
	require.Error(t, err)
}

func TestVersionRegistry_UsesCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := cache.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	versionCache := cache.NewVersionCache(client, "local", time.Minute)

	backend := &mocks.Backend{}
	backend.On("ListVersions", ctx).Return([]string{"2024", "2025"}, nil).Twice()

	registry := dataset.NewVersionRegistry(backend, versionCache, nil)
	for range 3 {
		versions, err := registry.List(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"2024", "2025"}, versions)
	}
	backend.AssertNumberOfCalls(t, "ListVersions", 1)

	require.NoError(t, registry.Invalidate(ctx))
	_, err := registry.List(ctx)
	require.NoError(t, err)
	backend.AssertNumberOfCalls(t, "ListVersions", 2)
}

func TestVersionRegistry_CacheDownFallsBack(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := cache.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	backend := &mocks.Backend{}
	backend.On("ListVersions", ctx).Return([]string{"a"}, nil)

	versions, err := dataset.NewVersionRegistry(backend, cache.NewVersionCache(client, "local", 0), nil).List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, versions)
}
