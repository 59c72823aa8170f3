// Package state provides persisted UI session state.
package state

// Tab identifies a UI shell tab.
type Tab string

const (
	TabHome      Tab = "home"
	TabSearch    Tab = "search"
	TabPlaylists Tab = "playlists"
	TabFavorites Tab = "fav"
)

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool {
	switch t {
	case TabHome, TabSearch, TabPlaylists, TabFavorites:
		return true
	default:
		return false
	}
}
