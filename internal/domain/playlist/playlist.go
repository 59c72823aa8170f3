// Package playlist provides the Playlist domain entity.
package playlist

// Playlist represents a user-created, ordered collection of songs.
// The JSON field names are the on-disk format and must stay stable.
type Playlist struct {
	ID      string   `json:"id"`              // Unique playlist ID
	Name    string   `json:"name"`            // User-chosen name (non-empty, trimmed)
	Cover   string   `json:"cover,omitempty"` // Cover art URI (may be empty)
	SongIDs []string `json:"songIds"`         // Member song IDs, order is user-controlled
}

// Contains reports whether the playlist holds the given song.
func (p *Playlist) Contains(songID string) bool {
	for _, id := range p.SongIDs {
		if id == songID {
			return true
		}
	}
	return false
}

// Add appends a song to the end of the playlist.
// Returns false if the song is already a member (duplicates disallowed).
func (p *Playlist) Add(songID string) bool {
	if p.Contains(songID) {
		return false
	}
	p.SongIDs = append(p.SongIDs, songID)
	return true
}

// Remove filters out a song. Returns false if it was not a member.
func (p *Playlist) Remove(songID string) bool {
	for i, id := range p.SongIDs {
		if id == songID {
			p.SongIDs = append(p.SongIDs[:i], p.SongIDs[i+1:]...)
			return true
		}
	}
	return false
}

// Move relocates the entry at index from to index to, preserving the
// relative order of all other entries. Returns false on out-of-range
// indexes.
func (p *Playlist) Move(from, to int) bool {
	n := len(p.SongIDs)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}
	id := p.SongIDs[from]
	rest := append(p.SongIDs[:from], p.SongIDs[from+1:]...)
	p.SongIDs = append(rest[:to], append([]string{id}, rest[to:]...)...)
	return true
}

// IsPermutation reports whether order contains exactly the playlist's
// members, each exactly once.
func (p *Playlist) IsPermutation(order []string) bool {
	if len(order) != len(p.SongIDs) {
		return false
	}
	counts := make(map[string]int, len(p.SongIDs))
	for _, id := range p.SongIDs {
		counts[id]++
	}
	for _, id := range order {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}

// CloneIDs returns a copy of the member list.
func (p *Playlist) CloneIDs() []string {
	out := make([]string, len(p.SongIDs))
	copy(out, p.SongIDs)
	return out
}
