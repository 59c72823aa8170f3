// Package library provides the song and playlist catalogue.
package library

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/okizeme/bytemusic/internal/domain/playlist"
	"github.com/okizeme/bytemusic/internal/domain/song"
	"github.com/okizeme/bytemusic/internal/infra/store"
)

// Errors
var (
	ErrEmptyName      = errors.New("playlist name is empty")
	ErrDuplicateID    = errors.New("song id already in library")
	ErrNotPermutation = errors.New("new order is not a permutation of the playlist")
)

// Service owns all songs and playlists. Every mutation is written
// through to the store; missing-id operations are silent no-ops.
type Service struct {
	mu        sync.RWMutex
	songs     []song.Song
	playlists []playlist.Playlist
	store     *store.Store
}

// New loads the catalogue from the store. With no saved songs the seed
// list becomes the initial library.
func New(st *store.Store, seed []song.Song) *Service {
	s := &Service{store: st}

	if !st.Read(store.KeySongs, &s.songs) {
		s.songs = append([]song.Song(nil), seed...)
		s.persistSongsLocked()
	}
	if !st.Read(store.KeyPlaylists, &s.playlists) {
		s.playlists = make([]playlist.Playlist, 0)
	}

	zlog.Info().Msgf("library: loaded %d songs, %d playlists", len(s.songs), len(s.playlists))
	return s
}

// Song returns the song with the given id.
func (s *Service) Song(id string) (song.Song, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sg := range s.songs {
		if sg.ID == id {
			return sg, true
		}
	}
	return song.Song{}, false
}

// Songs returns a copy of the song list, newest first.
func (s *Service) Songs() []song.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]song.Song(nil), s.songs...)
}

// HasSource reports whether any song already uses the given source URI.
func (s *Service) HasSource(uri string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.SomeBy(s.songs, func(sg song.Song) bool { return sg.Src == uri })
}

// AddSong prepends a song to the library. The id must be unique; a
// collision is rejected rather than overwriting the existing entry.
func (s *Service) AddSong(sg song.Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.songs {
		if existing.ID == sg.ID {
			return errors.Wrapf(ErrDuplicateID, "id %s", sg.ID)
		}
	}

	s.songs = append([]song.Song{sg}, s.songs...)
	s.persistSongsLocked()
	return nil
}

// AddUpload creates a library entry for an uploaded file. The title is
// the file name without its extension.
func (s *Service) AddUpload(srcURI, coverURI string) song.Song {
	sg := song.Song{
		ID:     uuid.NewString(),
		Title:  TitleFromPath(srcURI),
		Artist: "Local Upload",
		Src:    srcURI,
		Cover:  coverURI,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.songs = append([]song.Song{sg}, s.songs...)
	s.persistSongsLocked()
	zlog.Info().Msgf("library: added upload: id=%s title=%s", sg.ID, sg.Title)
	return sg
}

// RemoveSong removes a song and filters it out of every playlist.
// Returns whether the song existed; removing an absent id is a no-op.
// Favorites and playback cleanup belong to the session layer.
func (s *Service) RemoveSong(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.songs)
	s.songs = lo.Reject(s.songs, func(sg song.Song, _ int) bool { return sg.ID == id })
	if len(s.songs) == before {
		return false
	}

	changed := false
	for i := range s.playlists {
		if s.playlists[i].Remove(id) {
			changed = true
		}
	}

	s.persistSongsLocked()
	if changed {
		s.persistPlaylistsLocked()
	}
	return true
}

// Playlist returns a copy of the playlist with the given id.
func (s *Service) Playlist(id string) (playlist.Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, pl := range s.playlists {
		if pl.ID == id {
			out := pl
			out.SongIDs = pl.CloneIDs()
			return out, true
		}
	}
	return playlist.Playlist{}, false
}

// Playlists returns a copy of the playlist collection, newest first.
func (s *Service) Playlists() []playlist.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]playlist.Playlist, len(s.playlists))
	for i, pl := range s.playlists {
		out[i] = pl
		out[i].SongIDs = pl.CloneIDs()
	}
	return out
}

// CreatePlaylist allocates a new empty playlist with the trimmed name
// and returns its id. A blank name is rejected.
func (s *Service) CreatePlaylist(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}

	pl := playlist.Playlist{
		ID:      uuid.NewString(),
		Name:    name,
		SongIDs: make([]string, 0),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.playlists = append([]playlist.Playlist{pl}, s.playlists...)
	s.persistPlaylistsLocked()
	return pl.ID, nil
}

// DeletePlaylist removes a playlist. Idempotent.
func (s *Service) DeletePlaylist(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.playlists)
	s.playlists = lo.Reject(s.playlists, func(pl playlist.Playlist, _ int) bool { return pl.ID == id })
	if len(s.playlists) != before {
		s.persistPlaylistsLocked()
	}
}

// AddSongToPlaylist appends a song to a playlist. A no-op when either
// id is unknown or the song is already a member.
func (s *Service) AddSongToPlaylist(songID, playlistID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.songExistsLocked(songID) {
		return
	}
	for i := range s.playlists {
		if s.playlists[i].ID == playlistID {
			if s.playlists[i].Add(songID) {
				s.persistPlaylistsLocked()
			}
			return
		}
	}
}

// RemoveSongFromPlaylist filters a song out of a playlist. Idempotent.
func (s *Service) RemoveSongFromPlaylist(songID, playlistID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.playlists {
		if s.playlists[i].ID == playlistID {
			if s.playlists[i].Remove(songID) {
				s.persistPlaylistsLocked()
			}
			return
		}
	}
}

// ReorderPlaylistSongs replaces a playlist's member order wholesale.
// The new order must be a permutation of the current members; a
// mismatched set is rejected instead of silently accepted. An unknown
// playlist id is a no-op.
func (s *Service) ReorderPlaylistSongs(playlistID string, newOrder []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.playlists {
		if s.playlists[i].ID != playlistID {
			continue
		}
		if !s.playlists[i].IsPermutation(newOrder) {
			return errors.Wrapf(ErrNotPermutation, "playlist %s", playlistID)
		}
		s.playlists[i].SongIDs = append([]string(nil), newOrder...)
		s.persistPlaylistsLocked()
		return nil
	}
	return nil
}

// MoveSongBetweenPlaylists moves the entry at srcIndex of the source
// playlist to dstIndex of the destination playlist. Within one
// playlist this is a reorder. A no-op when ids or indexes are invalid,
// or when the destination already contains the song.
func (s *Service) MoveSongBetweenPlaylists(srcID, dstID string, srcIndex, dstIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.findPlaylistLocked(srcID)
	if src == nil {
		return
	}

	if srcID == dstID {
		if src.Move(srcIndex, dstIndex) {
			s.persistPlaylistsLocked()
		}
		return
	}

	dst := s.findPlaylistLocked(dstID)
	if dst == nil || srcIndex < 0 || srcIndex >= len(src.SongIDs) {
		return
	}
	if dstIndex < 0 || dstIndex > len(dst.SongIDs) {
		return
	}

	songID := src.SongIDs[srcIndex]
	if dst.Contains(songID) {
		return
	}

	src.SongIDs = append(src.SongIDs[:srcIndex], src.SongIDs[srcIndex+1:]...)
	dst.SongIDs = append(dst.SongIDs[:dstIndex], append([]string{songID}, dst.SongIDs[dstIndex:]...)...)
	s.persistPlaylistsLocked()
}

// Search returns songs matching the query: a case-insensitive
// substring test on title and artist, plus membership in a playlist
// whose name matches. A blank query returns everything.
func (s *Service) Search(query string) []song.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]song.Song(nil), s.songs...)
	}

	matchingLists := lo.Filter(s.playlists, func(pl playlist.Playlist, _ int) bool {
		return strings.Contains(strings.ToLower(pl.Name), q)
	})

	return lo.Filter(s.songs, func(sg song.Song, _ int) bool {
		if sg.Matches(q) {
			return true
		}
		return lo.SomeBy(matchingLists, func(pl playlist.Playlist) bool {
			return pl.Contains(sg.ID)
		})
	})
}

// TitleFromPath derives a display title from a source path: the base
// name without its extension.
func TitleFromPath(path string) string {
	base := filepath.Base(strings.TrimPrefix(path, "file://"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *Service) songExistsLocked(id string) bool {
	for _, sg := range s.songs {
		if sg.ID == id {
			return true
		}
	}
	return false
}

func (s *Service) findPlaylistLocked(id string) *playlist.Playlist {
	for i := range s.playlists {
		if s.playlists[i].ID == id {
			return &s.playlists[i]
		}
	}
	return nil
}

func (s *Service) persistSongsLocked() {
	s.store.Write(store.KeySongs, s.songs)
}

func (s *Service) persistPlaylistsLocked() {
	s.store.Write(store.KeyPlaylists, s.playlists)
}
