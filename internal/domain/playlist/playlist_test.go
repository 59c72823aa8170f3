package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaylist_AddRemove(t *testing.T) {
	p := &Playlist{ID: "pl1", Name: "Road Trip", SongIDs: []string{}}

	assert.True(t, p.Add("s1"))
	assert.True(t, p.Add("s2"))
	assert.False(t, p.Add("s1"), "duplicate add must be rejected")
	assert.Equal(t, []string{"s1", "s2"}, p.SongIDs)

	assert.True(t, p.Remove("s1"))
	assert.False(t, p.Remove("s1"), "second remove is a no-op")
	assert.Equal(t, []string{"s2"}, p.SongIDs)
}

func TestPlaylist_Move(t *testing.T) {
	tests := []struct {
		name     string
		ids      []string
		from, to int
		ok       bool
		expected []string
	}{
		{
			name:     "forward move",
			ids:      []string{"a", "b", "c", "d"},
			from:     0,
			to:       2,
			ok:       true,
			expected: []string{"b", "c", "a", "d"},
		},
		{
			name:     "backward move",
			ids:      []string{"a", "b", "c", "d"},
			from:     3,
			to:       0,
			ok:       true,
			expected: []string{"d", "a", "b", "c"},
		},
		{
			name:     "same index",
			ids:      []string{"a", "b"},
			from:     1,
			to:       1,
			ok:       true,
			expected: []string{"a", "b"},
		},
		{
			name:     "from out of range",
			ids:      []string{"a", "b"},
			from:     2,
			to:       0,
			ok:       false,
			expected: []string{"a", "b"},
		},
		{
			name:     "to out of range",
			ids:      []string{"a", "b"},
			from:     0,
			to:       -1,
			ok:       false,
			expected: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Playlist{ID: "pl1", SongIDs: append([]string(nil), tt.ids...)}
			assert.Equal(t, tt.ok, p.Move(tt.from, tt.to))
			assert.Equal(t, tt.expected, p.SongIDs)
		})
	}
}

func TestPlaylist_IsPermutation(t *testing.T) {
	p := &Playlist{ID: "pl1", SongIDs: []string{"a", "b", "c"}}

	tests := []struct {
		name     string
		order    []string
		expected bool
	}{
		{name: "identity", order: []string{"a", "b", "c"}, expected: true},
		{name: "reordered", order: []string{"c", "a", "b"}, expected: true},
		{name: "missing entry", order: []string{"a", "b"}, expected: false},
		{name: "extra entry", order: []string{"a", "b", "c", "d"}, expected: false},
		{name: "duplicated entry", order: []string{"a", "a", "c"}, expected: false},
		{name: "different set", order: []string{"x", "y", "z"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.IsPermutation(tt.order))
		})
	}
}

func TestPlaylist_CloneIDs(t *testing.T) {
	p := &Playlist{ID: "pl1", SongIDs: []string{"a", "b"}}
	clone := p.CloneIDs()
	clone[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, p.SongIDs)
}
