package audio

import (
	"sync"
	"time"
)

// Null is an output device that accepts every request and produces no
// sound. Used for headless runs and environments without an audio
// stack.
type Null struct {
	mu     sync.Mutex
	source string
	loaded bool
	pos    time.Duration

	events chan Event
	closed sync.Once
}

// NewNull creates a silent output device.
func NewNull() *Null {
	return &Null{events: make(chan Event, 16)}
}

func (n *Null) SetSource(uri string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.source = uri
	n.loaded = false
	n.pos = 0
}

func (n *Null) Source() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.source
}

func (n *Null) Load() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.loaded = n.source != ""
	if n.loaded {
		n.emit(Event{Type: EventLoadedMetadata})
	}
}

func (n *Null) Play() <-chan error {
	result := make(chan error, 1)
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.loaded {
		result <- ErrNoSource
		return result
	}
	result <- nil
	return result
}

func (n *Null) Pause() {}

func (n *Null) Position() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pos
}

func (n *Null) SetPosition(pos time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pos = pos
}

func (n *Null) Duration() time.Duration { return 0 }

func (n *Null) Events() <-chan Event { return n.events }

func (n *Null) Close() error {
	n.closed.Do(func() { close(n.events) })
	return nil
}

func (n *Null) emit(ev Event) {
	select {
	case n.events <- ev:
	default:
	}
}
