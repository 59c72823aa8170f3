package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	type entry struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	in := []entry{{ID: "a", Name: "one"}, {ID: "b", Name: "two"}}
	s.Write(KeyPlaylists, in)

	var out []entry
	require.True(t, s.Read(KeyPlaylists, &out))
	assert.Equal(t, in, out)
}

func TestStore_ReadMissingKeyKeepsDefault(t *testing.T) {
	s := openTestStore(t)

	out := []string{"default"}
	assert.False(t, s.Read(KeyQueue, &out))
	assert.Equal(t, []string{"default"}, out, "dest must stay untouched")
}

func TestStore_ReadMalformedDataKeepsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	// Plant garbage directly, bypassing Write's marshalling.
	require.NoError(t, s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Put([]byte(KeySongs), []byte("{not json"))
	}))

	out := "default"
	assert.False(t, s.Read(KeySongs, &out))
	assert.Equal(t, "default", out)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	s.Write(KeyCurrent, "s2")
	s.Write(KeyPlaying, true)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var current string
	var playing bool
	require.True(t, s.Read(KeyCurrent, &current))
	require.True(t, s.Read(KeyPlaying, &playing))
	assert.Equal(t, "s2", current)
	assert.True(t, playing)
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)

	s.Write(KeyTab, "playlists")
	s.Delete(KeyTab)

	var tab string
	assert.False(t, s.Read(KeyTab, &tab))
}

func TestStore_MemoryOnlyMode(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	s.Write(KeyQueue, []string{"a", "b"})

	var out []string
	require.True(t, s.Read(KeyQueue, &out))
	assert.Equal(t, []string{"a", "b"}, out)

	s.Delete(KeyQueue)
	assert.False(t, s.Read(KeyQueue, &out))
}
