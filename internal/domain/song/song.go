// Package song provides the Song domain entity.
package song

import "strings"

// Song represents a playable track in the library.
// The JSON field names are the on-disk format and must stay stable.
type Song struct {
	ID       string  `json:"id"`     // Unique song ID
	Title    string  `json:"title"`  // Display title
	Artist   string  `json:"artist"` // Artist name
	Src      string  `json:"src"`    // Playable source URI (file path)
	Cover    string  `json:"cover"`  // Cover art URI (may be empty)
	Duration float64 `json:"duration"` // Duration in seconds; 0 until metadata is known
}

// Matches reports whether the song matches a search query.
// Matching is a case-insensitive substring test on title and artist.
func (s *Song) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Title), q) ||
		strings.Contains(strings.ToLower(s.Artist), q)
}
