package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStoreTests(t *testing.T, store Store) {
	t.Helper()

	t.Run("Should report missing keys without error", func(t *testing.T) {
		_, ok, err := store.Get("missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should round-trip values", func(t *testing.T) {
		require.NoError(t, store.Set("k", "v1"))

		v, ok, err := store.Get("k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "v1", v)
	})

	t.Run("Should overwrite existing values", func(t *testing.T) {
		require.NoError(t, store.Set("k", "v1"))
		require.NoError(t, store.Set("k", "v2"))

		v, _, err := store.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "v2", v)
	})

	t.Run("Should delete values", func(t *testing.T) {
		require.NoError(t, store.Set("k", "v"))
		require.NoError(t, store.Delete("k"))

		_, ok, err := store.Get("k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should tolerate deleting missing keys", func(t *testing.T) {
		assert.NoError(t, store.Delete("never-set"))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	runStoreTests(t, store)
}

func TestSQLiteStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("client-id", "abc"))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	v, ok, err := second.Get("client-id")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", v)
}
