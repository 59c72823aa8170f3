package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okizeme/bytemusic/internal/app/playback"
	"github.com/okizeme/bytemusic/internal/app/session/state"
	"github.com/okizeme/bytemusic/internal/infra/config"
	"github.com/okizeme/bytemusic/internal/infra/store"
)

func testManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()

	st, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := &config.Config{
		Audio: config.AudioConfig{Output: "null"},
		Library: config.LibraryConfig{
			Seed: []config.SeedSong{
				{ID: "s1", Title: "One", Artist: "A", Src: "/m/s1.mp3"},
				{ID: "s2", Title: "Two", Artist: "B", Src: "/m/s2.mp3"},
				{ID: "s3", Title: "Three", Artist: "C", Src: "/m/s3.mp3"},
			},
		},
	}

	m, err := NewManager(cfg, st)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m, st
}

func TestManager_RemoveSongCascades(t *testing.T) {
	m, _ := testManager(t)

	plID, err := m.CreatePlaylist("mix")
	require.NoError(t, err)
	m.AddSongToPlaylist("s1", plID)
	m.AddSongToPlaylist("s2", plID)
	m.ToggleFavorite("s1")
	m.Play("s1")

	m.RemoveSong("s1")

	// Gone from the library.
	assert.Len(t, m.Songs(), 2)
	// Gone from every playlist.
	pls := m.Playlists()
	require.Len(t, pls, 1)
	assert.Equal(t, []string{"s2"}, pls[0].SongIDs)
	// Gone from favorites.
	assert.False(t, m.IsFavorite("s1"))
	assert.Empty(t, m.Favorites())
	// Playback stopped and cursor cleared.
	np := m.NowPlaying()
	assert.Nil(t, np.Song)
	assert.Equal(t, playback.StateIdle, np.Snapshot.State)
	assert.False(t, np.Snapshot.Playing)
}

func TestManager_RemoveOtherSongKeepsPlayback(t *testing.T) {
	m, _ := testManager(t)

	m.Play("s1")
	m.RemoveSong("s2")

	np := m.NowPlaying()
	require.NotNil(t, np.Song)
	assert.Equal(t, "s1", np.Song.ID)
}

func TestManager_PlayPlaylist(t *testing.T) {
	m, _ := testManager(t)

	plID, err := m.CreatePlaylist("mix")
	require.NoError(t, err)
	m.AddSongToPlaylist("s2", plID)
	m.AddSongToPlaylist("s3", plID)

	m.PlayPlaylist(plID)

	np := m.NowPlaying()
	require.NotNil(t, np.Song)
	assert.Equal(t, "s2", np.Song.ID)
	assert.Equal(t, []string{"s2", "s3"}, np.Snapshot.Queue)

	// Unknown and empty playlists are no-ops.
	m.PlayPlaylist("nope")
	empty, err := m.CreatePlaylist("empty")
	require.NoError(t, err)
	m.PlayPlaylist(empty)
	assert.Equal(t, "s2", m.NowPlaying().Snapshot.CurrentID)
}

func TestManager_ReorderResyncsQueue(t *testing.T) {
	m, _ := testManager(t)

	plID, err := m.CreatePlaylist("mix")
	require.NoError(t, err)
	for _, id := range []string{"s1", "s2", "s3"} {
		m.AddSongToPlaylist(id, plID)
	}
	m.PlayPlaylist(plID)

	newOrder := []string{"s3", "s1", "s2"}
	require.NoError(t, m.ReorderPlaylistSongs(plID, newOrder))

	pls := m.Playlists()
	require.Len(t, pls, 1)
	assert.Equal(t, newOrder, pls[0].SongIDs)
	assert.Equal(t, newOrder, m.NowPlaying().Snapshot.Queue, "queue follows the reorder")
}

func TestManager_ReorderRejectsMismatchedSet(t *testing.T) {
	m, _ := testManager(t)

	plID, err := m.CreatePlaylist("mix")
	require.NoError(t, err)
	m.AddSongToPlaylist("s1", plID)

	err = m.ReorderPlaylistSongs(plID, []string{"s1", "s2"})
	require.Error(t, err)

	assert.NoError(t, m.ReorderPlaylistSongs("unknown", []string{"s1"}))
}

func TestManager_FavoritesResolveToSongs(t *testing.T) {
	m, _ := testManager(t)

	m.ToggleFavorite("s2")
	m.ToggleFavorite("s3")

	favs := m.Favorites()
	require.Len(t, favs, 2)
	assert.Equal(t, "s3", favs[0].ID)
	assert.Equal(t, "s2", favs[1].ID)
}

func TestManager_Upload(t *testing.T) {
	m, _ := testManager(t)

	sg := m.Upload("/uploads/New Tune.mp3", "")
	assert.Equal(t, "New Tune", sg.Title)

	songs := m.Songs()
	assert.Equal(t, sg.ID, songs[0].ID, "uploads are prepended")
}

func TestManager_TabPersists(t *testing.T) {
	m, st := testManager(t)

	assert.Equal(t, state.TabHome, m.ActiveTab())
	assert.True(t, m.SetActiveTab(state.TabFavorites))
	assert.False(t, m.SetActiveTab(state.Tab("bogus")))
	assert.Equal(t, state.TabFavorites, m.ActiveTab())

	var saved state.Tab
	require.True(t, st.Read(store.KeyTab, &saved))
	assert.Equal(t, state.TabFavorites, saved)
}

func TestManager_Seek(t *testing.T) {
	m, _ := testManager(t)

	m.Play("s1")
	m.Seek(5 * time.Second)

	// The null device has no duration, so positions are not clamped
	// down; the cursor still moves optimistically.
	assert.Equal(t, 5*time.Second, m.NowPlaying().Snapshot.Position)
}
