// Package testutils provides utilities for testing: Redis and store helpers
// and a small seeded compendium
package testutils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-compendium/internal/redis"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// NewTestRedis starts an in-memory Redis and returns a client for it.
// Both are closed when the test ends.
func NewTestRedis(t testing.TB) (redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to create miniredis")
	t.Cleanup(mr.Close)

	client, err := redis.NewClient(mr.Addr(), nil)
	require.NoError(t, err, "failed to create redis client")
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// NewTestStore opens a migrated compendium store in a temp directory
func NewTestStore(t testing.TB) *compendium.Store {
	t.Helper()
	store, err := compendium.Open(context.Background(), &compendium.Config{
		Path: filepath.Join(t.TempDir(), "compendium.db"),
	})
	require.NoError(t, err, "failed to open compendium store")
	t.Cleanup(func() { _ = store.Close() })
	return store
}
