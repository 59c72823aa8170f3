// Package audio provides the audio output device capability consumed
// by the playback engine.
package audio

import "time"

// EventType identifies a device notification.
type EventType int

const (
	EventTimeUpdate     EventType = iota // Playback position advanced
	EventLoadedMetadata                  // Source decoded, duration known
	EventEnded                           // Current source played to the end
	EventError                           // Decode or output failure
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTimeUpdate:
		return "time_update"
	case EventLoadedMetadata:
		return "loaded_metadata"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a notification emitted by an output device.
type Event struct {
	Type     EventType
	Position time.Duration // Set for EventTimeUpdate
	Duration time.Duration // Set for EventLoadedMetadata
	Err      error         // Set for EventError
}

// Device abstracts the audio output. Implementations are driven by the
// playback engine and report back through the Events channel, which
// stays open until Close.
type Device interface {
	// SetSource points the device at a new source URI, stopping any
	// current playback. Load prepares the source; failures surface as
	// EventError, not as a return value.
	SetSource(uri string)
	Source() string
	Load()

	// Play requests playback start. The returned channel yields the
	// outcome exactly once; a rejection means the device could not
	// start (missing or undecodable source).
	Play() <-chan error
	Pause()

	Position() time.Duration
	SetPosition(pos time.Duration)
	Duration() time.Duration

	Events() <-chan Event
	Close() error
}
