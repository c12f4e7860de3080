package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStoreKindIsPersistent(t *testing.T) {
	assert.Equal(t, "badger", DefaultStoreKind())
}

func TestNewStoreDefaultsToMemory(t *testing.T) {
	store, err := NewStore("", "")
	require.NoError(t, err)

	_, ok := store.(*MemoryStore)
	assert.True(t, ok)
}

func TestNewStoreBadger(t *testing.T) {
	store, err := NewStore("badger", filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)

	badgerStore, ok := store.(*BadgerStore)
	require.True(t, ok)
	require.NoError(t, badgerStore.Init(context.Background()))
	require.NoError(t, badgerStore.Close())
}

func TestNewStoreUnsupported(t *testing.T) {
	_, err := NewStore("unknown", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store backend")
}

func TestCloseIfSupported(t *testing.T) {
	memory, err := NewStore("memory", "")
	require.NoError(t, err)
	require.NoError(t, CloseIfSupported(memory))

	badgerStore, err := NewStore("badger", filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	require.NoError(t, badgerStore.Init(context.Background()))
	require.NoError(t, CloseIfSupported(badgerStore))
}
