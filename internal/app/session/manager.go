// Package session wires the player's components into one facade.
package session

import (
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/okizeme/bytemusic/internal/app/favorites"
	"github.com/okizeme/bytemusic/internal/app/library"
	"github.com/okizeme/bytemusic/internal/app/playback"
	"github.com/okizeme/bytemusic/internal/app/session/state"
	"github.com/okizeme/bytemusic/internal/domain/playlist"
	"github.com/okizeme/bytemusic/internal/domain/song"
	"github.com/okizeme/bytemusic/internal/infra/audio"
	"github.com/okizeme/bytemusic/internal/infra/config"
	"github.com/okizeme/bytemusic/internal/infra/store"
)

// Controller is the playback surface the UI shell consumes.
type Controller interface {
	Play(songID string)
	PlayPlaylist(playlistID string)
	TogglePlayPause()
	Next()
	Prev()
	Seek(pos time.Duration)
}

// Manager owns the library, favorites, UI state and playback engine,
// and orchestrates the cascades that cross component boundaries.
type Manager struct {
	library   *library.Service
	favorites *favorites.Service
	engine    *playback.Engine
	uiState   *state.Manager
	device    audio.Device
}

var _ Controller = (*Manager)(nil)

// NewManager builds the component graph on top of an open store.
func NewManager(cfg *config.Config, st *store.Store) (*Manager, error) {
	device, err := audio.NewFromConfig(cfg.Audio)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create audio device")
	}

	seed := make([]song.Song, len(cfg.Library.Seed))
	for i, s := range cfg.Library.Seed {
		seed[i] = song.Song{ID: s.ID, Title: s.Title, Artist: s.Artist, Src: s.Src, Cover: s.Cover}
	}

	lib := library.New(st, seed)
	m := &Manager{
		library:   lib,
		favorites: favorites.New(st),
		uiState:   state.New(st),
		device:    device,
		engine: playback.NewEngine(lib, device, st, playback.Options{
			Restore: !cfg.Playback.ResetOnStart,
		}),
	}
	return m, nil
}

// Library returns the song and playlist catalogue.
func (m *Manager) Library() *library.Service {
	return m.library
}

// Events returns the playback event stream for the UI shell.
func (m *Manager) Events() <-chan playback.Event {
	return m.engine.Events()
}

// --- playback ---

// Play plays a song "fresh", rebuilding the queue.
func (m *Manager) Play(songID string) {
	m.engine.PlaySong(songID, playback.PlayOptions{})
}

// PlayPlaylist replaces the queue with the playlist's songs and starts
// from the top. Unknown or empty playlists are a no-op.
func (m *Manager) PlayPlaylist(playlistID string) {
	pl, ok := m.library.Playlist(playlistID)
	if !ok {
		zlog.Debug().Msgf("session: unknown playlist, ignoring play: id=%s", playlistID)
		return
	}
	m.engine.PlayQueue(pl.SongIDs)
}

func (m *Manager) TogglePlayPause() { m.engine.TogglePlayPause() }

func (m *Manager) Next() { m.engine.PlayNext() }

func (m *Manager) Prev() { m.engine.PlayPrev() }

func (m *Manager) Seek(pos time.Duration) { m.engine.Seek(pos) }

// NowPlaying describes the player view contents.
type NowPlaying struct {
	Song     *song.Song // nil when idle
	Snapshot playback.Snapshot
}

// NowPlaying returns the current cursor with its resolved song.
func (m *Manager) NowPlaying() NowPlaying {
	snap := m.engine.Snapshot()
	np := NowPlaying{Snapshot: snap}
	if snap.CurrentID != "" {
		if s, ok := m.library.Song(snap.CurrentID); ok {
			np.Song = &s
		}
	}
	return np
}

// --- library ---

func (m *Manager) Songs() []song.Song { return m.library.Songs() }

func (m *Manager) Playlists() []playlist.Playlist { return m.library.Playlists() }

func (m *Manager) Search(query string) []song.Song { return m.library.Search(query) }

// Upload registers an already-resolved source URI as a new library
// entry.
func (m *Manager) Upload(srcURI, coverURI string) song.Song {
	return m.library.AddUpload(srcURI, coverURI)
}

// RemoveSong removes a song everywhere: library, playlists, favorites,
// and playback when it is the current song.
func (m *Manager) RemoveSong(songID string) {
	if !m.library.RemoveSong(songID) {
		return
	}
	m.favorites.Remove(songID)
	m.engine.HandleSongRemoved(songID)
}

// CreatePlaylist creates an empty playlist and returns its id.
func (m *Manager) CreatePlaylist(name string) (string, error) {
	return m.library.CreatePlaylist(name)
}

func (m *Manager) DeletePlaylist(playlistID string) {
	m.library.DeletePlaylist(playlistID)
}

func (m *Manager) AddSongToPlaylist(songID, playlistID string) {
	m.library.AddSongToPlaylist(songID, playlistID)
}

func (m *Manager) RemoveSongFromPlaylist(songID, playlistID string) {
	m.library.RemoveSongFromPlaylist(songID, playlistID)
}

// ReorderPlaylistSongs persists a new member order and, when the queue
// plausibly reflects the playlist, resynchronizes the queue.
func (m *Manager) ReorderPlaylistSongs(playlistID string, newOrder []string) error {
	if _, ok := m.library.Playlist(playlistID); !ok {
		return nil
	}
	if err := m.library.ReorderPlaylistSongs(playlistID, newOrder); err != nil {
		return err
	}
	m.engine.SyncQueueWithOrder(newOrder)
	return nil
}

func (m *Manager) MoveSongBetweenPlaylists(srcID, dstID string, srcIndex, dstIndex int) {
	m.library.MoveSongBetweenPlaylists(srcID, dstID, srcIndex, dstIndex)
}

// --- favorites ---

func (m *Manager) ToggleFavorite(songID string) bool { return m.favorites.Toggle(songID) }

func (m *Manager) IsFavorite(songID string) bool { return m.favorites.IsFavorite(songID) }

// Favorites returns the favorited songs, most recently favorited
// first.
func (m *Manager) Favorites() []song.Song {
	ids := m.favorites.List()
	out := make([]song.Song, 0, len(ids))
	for _, id := range ids {
		if s, ok := m.library.Song(id); ok {
			out = append(out, s)
		}
	}
	return out
}

// --- UI state ---

func (m *Manager) ActiveTab() state.Tab { return m.uiState.ActiveTab() }

func (m *Manager) SetActiveTab(t state.Tab) bool { return m.uiState.SetActiveTab(t) }

// Close shuts down playback and the audio device.
func (m *Manager) Close() {
	m.engine.Close()
	if err := m.device.Close(); err != nil {
		zlog.Debug().Msgf("session: device close: %v", err)
	}
}
