// Package favorites tracks favorited songs, most recent first.
package favorites

import (
	"sync"

	"github.com/samber/lo"

	"github.com/okizeme/bytemusic/internal/infra/store"
)

// Service holds the favorites set. The ordered list is the display
// order (most recently favorited first); the member set gives O(1)
// membership tests. The service knows nothing about the library;
// removal cascades are driven from the session layer.
type Service struct {
	mu      sync.RWMutex
	order   []string
	members map[string]struct{}
	store   *store.Store
}

// New loads the favorites set from the store.
func New(st *store.Store) *Service {
	s := &Service{
		order:   make([]string, 0),
		members: make(map[string]struct{}),
		store:   st,
	}

	if st.Read(store.KeyFavorites, &s.order) {
		for _, id := range s.order {
			s.members[id] = struct{}{}
		}
	}
	return s
}

// Toggle flips a song's favorite status. New favorites go to the
// front. Returns whether the song is a favorite afterwards.
func (s *Service) Toggle(songID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[songID]; ok {
		s.removeLocked(songID)
		s.persistLocked()
		return false
	}

	s.order = append([]string{songID}, s.order...)
	s.members[songID] = struct{}{}
	s.persistLocked()
	return true
}

// IsFavorite reports membership.
func (s *Service) IsFavorite(songID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[songID]
	return ok
}

// Remove drops a song from the set. Idempotent; used when a song
// leaves the library.
func (s *Service) Remove(songID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[songID]; !ok {
		return
	}
	s.removeLocked(songID)
	s.persistLocked()
}

// List returns the favorite ids, most recently favorited first.
func (s *Service) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

func (s *Service) removeLocked(songID string) {
	s.order = lo.Without(s.order, songID)
	delete(s.members, songID)
}

func (s *Service) persistLocked() {
	s.store.Write(store.KeyFavorites, s.order)
}
