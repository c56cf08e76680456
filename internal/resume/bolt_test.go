package resume

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playline/internal/domain/item"
)

func TestBoltStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := OpenBolt(path)
	require.NoError(t, err)

	snap := Snapshot{
		Items: []item.Item{
			{ID: "a", Title: "First", ResolvedURL: "https://media.local/a.mp3"},
			{ID: "b", Title: "Second", Payload: map[string]any{"artist": "Someone"}},
		},
		Index:   1,
		Elapsed: 42 * time.Second,
	}
	require.NoError(t, store.Save(snap))
	require.NoError(t, store.Close())

	// Reopen to prove the snapshot survived the process boundary.
	store, err = OpenBolt(path)
	require.NoError(t, err)
	defer store.Close()

	got, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got.Index)
	assert.Equal(t, 42*time.Second, got.Elapsed)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "a", got.Items[0].ID)
	assert.Equal(t, "https://media.local/a.mp3", got.Items[0].ResolvedURL)
	assert.Equal(t, "Someone", got.Items[1].Payload["artist"])
}

func TestBoltStore_LoadEmpty(t *testing.T) {
	store, err := OpenBolt(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoltStore_SaveOverwrites(t *testing.T) {
	store, err := OpenBolt(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(Snapshot{Index: 0}))
	require.NoError(t, store.Save(Snapshot{Index: 3}))

	got, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.Index)
}
