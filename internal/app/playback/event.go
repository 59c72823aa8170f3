package playback

// EventType represents a playback event type.
type EventType int

const (
	EventSongStarted    EventType = iota // A play request was issued for a song
	EventSongEnded                       // The current song played to the end
	EventStateChanged                    // Play/pause/error state changed
	EventQueueChanged                    // Queue was rebuilt or resynchronized
	EventQueueExhausted                  // Advance found no next song
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventSongStarted:
		return "song_started"
	case EventSongEnded:
		return "song_ended"
	case EventStateChanged:
		return "state_changed"
	case EventQueueChanged:
		return "queue_changed"
	case EventQueueExhausted:
		return "queue_exhausted"
	default:
		return "unknown"
	}
}

// Event represents a playback event, consumed by the UI shell.
type Event struct {
	Type   EventType
	SongID string // Current song at the time of the event ("" when none)
	State  State
}
