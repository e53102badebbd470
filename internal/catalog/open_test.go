package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsonderegger/dokusort/internal/common"
)

func TestOpenStoreFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	st, closeStore, err := OpenStore(context.Background(), common.CatalogConfig{
		Backend: "file",
		Path:    path,
	}, nil)
	require.NoError(t, err)
	defer closeStore()

	fs, ok := st.(*FileStore)
	require.True(t, ok)
	assert.Equal(t, path, fs.Path())
}

func TestOpenStoreSQLite(t *testing.T) {
	st, closeStore, err := OpenStore(context.Background(), common.CatalogConfig{
		Backend: "sqlite",
		Path:    filepath.Join(t.TempDir(), "catalog.db"),
	}, nil)
	require.NoError(t, err)
	defer closeStore()

	snap, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Correspondents)
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	_, _, err := OpenStore(context.Background(), common.CatalogConfig{Backend: "redis"}, nil)
	assert.ErrorContains(t, err, "unknown catalog backend")
}
