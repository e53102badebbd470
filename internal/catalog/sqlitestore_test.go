package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	snap := Snapshot{
		Correspondents: []string{"Migros", "Swisscom AG"},
		Tags:           []string{"Police", "Rechnung"},
		Aliases:        map[string]string{"swisscom": "Swisscom AG"},
	}
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestSQLiteStoreSaveReplacesState(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, Snapshot{
		Correspondents: []string{"Old Name"},
		Aliases:        map[string]string{"old": "Old Name"},
	}))
	require.NoError(t, store.Save(ctx, Snapshot{
		Correspondents: []string{"New Name"},
		Aliases:        map[string]string{"new": "New Name"},
	}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"New Name"}, got.Correspondents)
	assert.Equal(t, map[string]string{"new": "New Name"}, got.Aliases)
	assert.Empty(t, got.Tags)
}

func TestSQLiteStoreEmptyLoad(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Correspondents)
	assert.NotNil(t, got.Aliases)
}
