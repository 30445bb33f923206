package storage_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korjavin/prayerbot/pkg/storage"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newStore(t *testing.T) *storage.Store {
	t.Helper()

	store, err := storage.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreSetWithTTLGet(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.SetWithTTL("a:1", record{Name: "one", Count: 1}, 0))

	var got record
	require.NoError(t, store.Get("a:1", &got))
	assert.Equal(t, record{Name: "one", Count: 1}, got)
}

func TestStoreGetMissing(t *testing.T) {
	store := newStore(t)

	var got record
	err := store.Get("missing", &got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestStoreDeleteAndList(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.SetWithTTL("schedule:1", record{Name: "x"}, 0))
	require.NoError(t, store.SetWithTTL("schedule:2", record{Name: "y"}, 0))
	require.NoError(t, store.SetWithTTL("other:1", record{Name: "z"}, 0))

	keys, err := store.List("schedule:")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"schedule:1", "schedule:2"}, keys)

	require.NoError(t, store.Delete("schedule:1"))

	keys, err = store.List("schedule:")
	require.NoError(t, err)
	assert.Equal(t, []string{"schedule:2"}, keys)
}

func TestStoreOnDisk(t *testing.T) {
	dir := t.TempDir()

	store, err := storage.New(dir)
	require.NoError(t, err)
	require.NoError(t, store.SetWithTTL("k", record{Count: 7}, 0))
	require.NoError(t, store.Close())

	store, err = storage.New(dir)
	require.NoError(t, err)
	defer store.Close()

	var got record
	require.NoError(t, store.Get("k", &got))
	assert.Equal(t, 7, got.Count)
}
