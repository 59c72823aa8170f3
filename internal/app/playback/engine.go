package playback

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/okizeme/bytemusic/internal/domain/song"
	"github.com/okizeme/bytemusic/internal/infra/audio"
	"github.com/okizeme/bytemusic/internal/infra/store"
)

// SongResolver resolves song ids against the library.
type SongResolver interface {
	Song(id string) (song.Song, bool)
	Songs() []song.Song
}

// PlayOptions controls queue handling for PlaySong.
type PlayOptions struct {
	// KeepQueue leaves the queue untouched, only moving the cursor.
	// The default (false) rebuilds the queue most-recently-played
	// first: the song moves to the front, the rest of the previous
	// queue follows in order.
	KeepQueue bool
}

// Options configures engine construction.
type Options struct {
	// Restore reloads the saved queue and current song. The saved
	// playing flag is ignored: playback never auto-starts on boot, a
	// restored current song comes up paused.
	Restore bool
}

// Engine owns the playback cursor and the play queue, and drives the
// audio output device. Queue entries are song ids; entries whose song
// has since been removed stay in the queue and are skipped on play.
type Engine struct {
	mu sync.Mutex

	resolver SongResolver
	device   audio.Device
	store    *store.Store

	queue    []string
	current  string // Current song id ("" when idle)
	playing  bool
	state    State
	position time.Duration
	duration time.Duration

	// Latest play request. Async device results carrying an older
	// generation are discarded; superseding a pending request is the
	// only cancellation mechanism.
	generation uint64

	eventCh chan Event
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewEngine creates a playback engine bound to a resolver, an output
// device and a state store.
func NewEngine(resolver SongResolver, device audio.Device, st *store.Store, opts Options) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		resolver: resolver,
		device:   device,
		store:    st,
		queue:    make([]string, 0),
		state:    StateIdle,
		eventCh:  make(chan Event, 16),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	if opts.Restore {
		e.restoreLocked()
	} else {
		e.persistQueueLocked()
		e.persistCursorLocked()
	}

	go e.deviceLoop()
	return e
}

// Events returns the event channel consumed by the UI shell.
func (e *Engine) Events() <-chan Event {
	return e.eventCh
}

// PlaySong plays the given song. An unknown id is a silent no-op.
func (e *Engine) PlaySong(id string, opts PlayOptions) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playSongLocked(id, opts.KeepQueue)
}

// PlayQueue replaces the queue wholesale and starts playback from its
// first playable entry. An empty list is a no-op. Used for "play this
// playlist".
func (e *Engine) PlayQueue(ids []string) {
	if len(ids) == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.queue = append([]string(nil), ids...)
	e.persistQueueLocked()
	e.sendEventLocked(Event{Type: EventQueueChanged, SongID: e.current, State: e.state})

	for _, id := range e.queue {
		if _, ok := e.resolver.Song(id); ok {
			e.playSongLocked(id, true)
			return
		}
	}
	e.stopLocked()
}

// TogglePlayPause pauses when playing and resumes when paused. With no
// current song it starts the first library song; with an empty library
// it is a no-op.
func (e *Engine) TogglePlayPause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == "" {
		songs := e.resolver.Songs()
		if len(songs) == 0 {
			return
		}
		e.playSongLocked(songs[0].ID, false)
		return
	}

	if e.playing {
		e.device.Pause()
		e.playing = false
		e.state = StatePaused
		e.persistCursorLocked()
		e.sendEventLocked(Event{Type: EventStateChanged, SongID: e.current, State: e.state})
		return
	}

	s, ok := e.resolver.Song(e.current)
	if !ok {
		e.stopLocked()
		return
	}
	e.startDeviceLocked(s)
}

// PlayNext moves to the next playable queue entry. At the queue tail
// playback stops and the current song is cleared. A no-op when the
// current song is not in the queue.
func (e *Engine) PlayNext() {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := lo.IndexOf(e.queue, e.current)
	if idx < 0 {
		return
	}
	e.advanceLocked(idx)
}

// PlayPrev moves to the previous playable queue entry. A no-op at the
// queue head or when the current song is not in the queue.
func (e *Engine) PlayPrev() {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := lo.IndexOf(e.queue, e.current)
	if idx <= 0 {
		return
	}
	for i := idx - 1; i >= 0; i-- {
		if _, ok := e.resolver.Song(e.queue[i]); ok {
			e.playSongLocked(e.queue[i], true)
			return
		}
	}
}

// Seek moves the playback position, clamped to [0, duration]. Allowed
// while playing or paused. The device's own time updates remain the
// authoritative source afterwards.
func (e *Engine) Seek(pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePlaying && e.state != StatePaused {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if e.duration > 0 && pos > e.duration {
		pos = e.duration
	}
	e.device.SetPosition(pos)
	e.position = pos
}

// SyncQueueWithOrder resynchronizes the queue after a playlist reorder
// when the queue plausibly reflects that playlist: either every id of
// the new order is already queued and the queue is at least as long,
// or the current song belongs to the new order. The queue is then
// replaced verbatim; otherwise it is left untouched. This is a
// heuristic, not a strict queue/playlist binding.
func (e *Engine) SyncQueueWithOrder(order []string) {
	if len(order) == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	reflects := lo.Every(e.queue, order) && len(e.queue) >= len(order)
	if !reflects && !lo.Contains(order, e.current) {
		return
	}

	e.queue = append([]string(nil), order...)
	e.persistQueueLocked()
	e.sendEventLocked(Event{Type: EventQueueChanged, SongID: e.current, State: e.state})
}

// HandleSongRemoved reacts to a library removal: when the removed song
// is current, playback stops and the cursor clears. Stale queue
// entries are kept and skipped on play.
func (e *Engine) HandleSongRemoved(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != id {
		return
	}
	e.stopLocked()
}

// Snapshot is a point-in-time copy of the cursor and queue.
type Snapshot struct {
	CurrentID string
	State     State
	Playing   bool
	Position  time.Duration
	Duration  time.Duration
	Queue     []string
}

// Snapshot returns the current playback state for rendering.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		CurrentID: e.current,
		State:     e.state,
		Playing:   e.playing,
		Position:  e.position,
		Duration:  e.duration,
		Queue:     append([]string(nil), e.queue...),
	}
}

// Close stops the engine, flushes cursor state and closes the event
// channel.
func (e *Engine) Close() {
	e.cancel()
	<-e.done

	e.mu.Lock()
	e.device.Pause()
	e.persistQueueLocked()
	e.persistCursorLocked()
	e.mu.Unlock()

	close(e.eventCh)
}

// playSongLocked resolves and starts a song. Unknown ids are ignored.
// Must be called with the mutex held.
func (e *Engine) playSongLocked(id string, keepQueue bool) {
	s, ok := e.resolver.Song(id)
	if !ok {
		zlog.Debug().Msgf("playback: unknown song id, ignoring: id=%s", id)
		return
	}

	if !keepQueue {
		e.queue = append([]string{id}, lo.Without(e.queue, id)...)
		e.persistQueueLocked()
		e.sendEventLocked(Event{Type: EventQueueChanged, SongID: id, State: e.state})
	}

	e.current = id
	e.persistCursorLocked()
	e.startDeviceLocked(s)
}

// startDeviceLocked points the device at the song's source (when it
// differs from what is loaded) and requests playback. The async play
// outcome is applied only if no newer request superseded it.
// Must be called with the mutex held.
func (e *Engine) startDeviceLocked(s song.Song) {
	if e.device.Source() != s.Src {
		e.position = 0
		e.duration = time.Duration(s.Duration * float64(time.Second))
		e.device.SetSource(s.Src)
		e.device.Load()
	}

	e.generation++
	gen := e.generation
	e.state = StateLoading
	e.sendEventLocked(Event{Type: EventSongStarted, SongID: s.ID, State: e.state})

	result := e.device.Play()
	select {
	case err := <-result:
		e.applyPlayResultLocked(gen, err)
	default:
		go func() {
			err := <-result
			e.mu.Lock()
			defer e.mu.Unlock()
			e.applyPlayResultLocked(gen, err)
		}()
	}
}

// applyPlayResultLocked applies the outcome of a play request. Results
// from superseded requests are discarded. A device rejection (blocked
// output, undecodable source) downgrades to paused rather than
// surfacing an error. Must be called with the mutex held.
func (e *Engine) applyPlayResultLocked(gen uint64, err error) {
	if gen != e.generation {
		zlog.Debug().Msgf("playback: discarding stale play result: gen=%d latest=%d", gen, e.generation)
		return
	}

	if err != nil {
		zlog.Warn().Msgf("playback: device rejected play: song=%s err=%v", e.current, err)
		e.playing = false
		e.state = StatePaused
	} else {
		e.playing = true
		e.state = StatePlaying
	}
	e.persistCursorLocked()
	e.sendEventLocked(Event{Type: EventStateChanged, SongID: e.current, State: e.state})
}

// advanceLocked plays the next playable queue entry after index from,
// or stops when none exists. Must be called with the mutex held.
func (e *Engine) advanceLocked(from int) {
	if from < 0 {
		e.exhaustLocked()
		return
	}
	for i := from + 1; i < len(e.queue); i++ {
		if _, ok := e.resolver.Song(e.queue[i]); ok {
			e.playSongLocked(e.queue[i], true)
			return
		}
	}
	e.exhaustLocked()
}

func (e *Engine) exhaustLocked() {
	e.stopLocked()
	e.sendEventLocked(Event{Type: EventQueueExhausted, State: e.state})
}

// stopLocked clears the cursor and pauses the device. The queue itself
// is kept. Must be called with the mutex held.
func (e *Engine) stopLocked() {
	e.generation++ // cancels any pending play result
	e.device.Pause()
	e.current = ""
	e.playing = false
	e.state = StateIdle
	e.position = 0
	e.duration = 0
	e.persistCursorLocked()
	e.sendEventLocked(Event{Type: EventStateChanged, State: e.state})
}

// restoreLocked reloads the saved queue and current song.
func (e *Engine) restoreLocked() {
	var queue []string
	if e.store.Read(store.KeyQueue, &queue) {
		e.queue = queue
	}

	var current string
	if e.store.Read(store.KeyCurrent, &current) && current != "" {
		if _, ok := e.resolver.Song(current); ok {
			e.current = current
			e.state = StatePaused
		} else {
			zlog.Debug().Msgf("playback: saved current song no longer exists: id=%s", current)
		}
	}

	e.persistCursorLocked()
}

// deviceLoop consumes device notifications for the engine's lifetime.
func (e *Engine) deviceLoop() {
	defer close(e.done)
	for {
		select {
		case <-e.ctx.Done():
			return
		case ev, ok := <-e.device.Events():
			if !ok {
				return
			}
			e.handleDeviceEvent(ev)
		}
	}
}

func (e *Engine) handleDeviceEvent(ev audio.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch ev.Type {
	case audio.EventTimeUpdate:
		e.position = ev.Position

	case audio.EventLoadedMetadata:
		if ev.Duration > 0 {
			e.duration = ev.Duration
		}

	case audio.EventEnded:
		// A late end notification with no current song must not
		// restart playback or re-announce exhaustion.
		if e.current == "" {
			break
		}
		e.sendEventLocked(Event{Type: EventSongEnded, SongID: e.current, State: e.state})
		e.advanceLocked(lo.IndexOf(e.queue, e.current))

	case audio.EventError:
		zlog.Warn().Msgf("playback: device error: song=%s err=%v", e.current, ev.Err)
		// The current song is kept so the UI can show what failed;
		// no auto-advance on errors.
		e.playing = false
		e.state = StateErrored
		e.persistCursorLocked()
		e.sendEventLocked(Event{Type: EventStateChanged, SongID: e.current, State: e.state})
	}
}

func (e *Engine) persistQueueLocked() {
	e.store.Write(store.KeyQueue, e.queue)
}

func (e *Engine) persistCursorLocked() {
	e.store.Write(store.KeyCurrent, e.current)
	e.store.Write(store.KeyPlaying, e.playing)
}

// sendEventLocked sends an event without blocking.
// Must be called with the mutex held.
func (e *Engine) sendEventLocked(ev Event) {
	if e.ctx.Err() != nil {
		return
	}
	select {
	case e.eventCh <- ev:
	default:
	}
}
