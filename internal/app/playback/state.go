// Package playback provides the playback engine: current song, play
// queue and cursor state, driven against an audio output device.
package playback

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // No current song
	StateLoading              // Play requested, device outcome pending
	StatePlaying              // Device is playing the current song
	StatePaused               // Current song loaded, not playing
	StateErrored              // Device reported a failure for the current song
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}
