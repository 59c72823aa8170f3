package audio

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	zlog "github.com/rs/zerolog/log"
)

// ErrNoSource is reported by Play when nothing playable is loaded.
var ErrNoSource = errors.New("no playable source loaded")

// SpeakerSettings holds speaker output settings, decoded from the
// audio settings map in the configuration.
type SpeakerSettings struct {
	SampleRate   int `mapstructure:"sample_rate"`
	BufferMs     int `mapstructure:"buffer_ms"`
	TimeUpdateMs int `mapstructure:"time_update_ms"`
}

func (s *SpeakerSettings) applyDefaults() {
	if s.SampleRate <= 0 {
		s.SampleRate = 44100
	}
	if s.BufferMs <= 0 {
		s.BufferMs = 100
	}
	if s.TimeUpdateMs <= 0 {
		s.TimeUpdateMs = 250
	}
}

// Speaker plays local audio files through the system output via beep.
type Speaker struct {
	mu sync.Mutex

	settings    SpeakerSettings
	sampleRate  beep.SampleRate
	initialized bool

	source   string
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	queued   bool // streamer currently handed to the speaker mixer
	loadErr  error

	events chan Event
	done   chan struct{}
	closed sync.Once
}

// NewSpeaker creates a speaker output device.
func NewSpeaker(settings SpeakerSettings) *Speaker {
	settings.applyDefaults()
	s := &Speaker{
		settings:   settings,
		sampleRate: beep.SampleRate(settings.SampleRate),
		events:     make(chan Event, 16),
		done:       make(chan struct{}),
	}
	go s.timeUpdateLoop(time.Duration(settings.TimeUpdateMs) * time.Millisecond)
	return s
}

// SetSource stops playback and points the device at a new source URI.
func (s *Speaker) SetSource(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.source = uri
	s.loadErr = nil
}

// Source returns the URI the device currently points at.
func (s *Speaker) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Load opens and decodes the current source. Failures are reported as
// EventError; a successful decode reports the duration through
// EventLoadedMetadata.
func (s *Speaker) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	if s.source == "" {
		s.loadErr = ErrNoSource
		return
	}

	path := strings.TrimPrefix(s.source, "file://")
	f, err := os.Open(path)
	if err != nil {
		s.loadErr = errors.Wrap(err, "failed to open source")
		s.emit(Event{Type: EventError, Err: s.loadErr})
		return
	}

	streamer, format, err := decode(path, f)
	if err != nil {
		_ = f.Close()
		s.loadErr = errors.Wrap(err, "failed to decode source")
		s.emit(Event{Type: EventError, Err: s.loadErr})
		return
	}

	s.streamer = streamer
	s.format = format
	s.loadErr = nil
	s.emit(Event{Type: EventLoadedMetadata, Duration: format.SampleRate.D(streamer.Len())})
}

// Play requests playback start. The result channel yields once.
func (s *Speaker) Play() <-chan error {
	result := make(chan error, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streamer == nil {
		if s.loadErr != nil {
			result <- s.loadErr
		} else {
			result <- ErrNoSource
		}
		return result
	}

	if s.queued {
		// Still in the mixer, paused: unpausing is enough.
		speaker.Lock()
		s.ctrl.Paused = false
		speaker.Unlock()
		result <- nil
		return result
	}

	if !s.initialized {
		bufSize := s.sampleRate.N(time.Duration(s.settings.BufferMs) * time.Millisecond)
		if err := speaker.Init(s.sampleRate, bufSize); err != nil {
			result <- errors.Wrap(err, "failed to init speaker")
			return result
		}
		s.initialized = true
	}

	// A drained Seq is removed from the mixer, so replaying the same
	// source means rewinding and submitting it again.
	if s.streamer.Position() > 0 {
		if err := s.streamer.Seek(0); err != nil {
			result <- errors.Wrap(err, "failed to rewind source")
			return result
		}
	}

	var streamer beep.Streamer = s.streamer
	if s.format.SampleRate != s.sampleRate {
		streamer = beep.Resample(4, s.format.SampleRate, s.sampleRate, streamer)
	}

	ctrl := &beep.Ctrl{Streamer: streamer}
	s.ctrl = ctrl
	s.queued = true

	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		// Runs on the speaker goroutine with the speaker lock held;
		// the slot must be cleared from a separate goroutine.
		go s.finish(ctrl)
	})))

	result <- nil
	return result
}

// finish clears the playback slot after the mixer drained it and
// reports the end of the track. A slot already superseded by a newer
// Play is left alone and its end is not reported.
func (s *Speaker) finish(ctrl *beep.Ctrl) {
	s.mu.Lock()
	stale := s.ctrl != ctrl
	if !stale {
		s.queued = false
		s.ctrl = nil
	}
	s.mu.Unlock()

	if !stale {
		s.emit(Event{Type: EventEnded})
	}
}

// Pause pauses playback.
func (s *Speaker) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl != nil {
		speaker.Lock()
		s.ctrl.Paused = true
		speaker.Unlock()
	}
}

// Position returns the current playback position.
func (s *Speaker) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

func (s *Speaker) positionLocked() time.Duration {
	if s.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := s.streamer.Position()
	speaker.Unlock()
	return s.format.SampleRate.D(pos)
}

// SetPosition seeks within the current source. Out-of-range positions
// are the caller's concern; seek failures are logged and swallowed.
func (s *Speaker) SetPosition(pos time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streamer == nil {
		return
	}
	speaker.Lock()
	err := s.streamer.Seek(s.format.SampleRate.N(pos))
	speaker.Unlock()
	if err != nil {
		zlog.Debug().Msgf("audio: seek failed: pos=%v err=%v", pos, err)
	}
}

// Duration returns the total duration of the loaded source.
func (s *Speaker) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streamer == nil {
		return 0
	}
	return s.format.SampleRate.D(s.streamer.Len())
}

// Events returns the device notification channel.
func (s *Speaker) Events() <-chan Event {
	return s.events
}

// Close stops playback and releases the device.
func (s *Speaker) Close() error {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()

	s.closed.Do(func() {
		close(s.done)
		close(s.events)
	})
	return nil
}

// stopLocked detaches and closes the current streamer.
// Must be called with the mutex held.
func (s *Speaker) stopLocked() {
	if s.ctrl != nil {
		speaker.Lock()
		s.ctrl.Paused = true
		speaker.Unlock()
	}
	if s.queued {
		speaker.Clear()
	}
	if s.streamer != nil {
		_ = s.streamer.Close()
		s.streamer = nil
	}
	s.ctrl = nil
	s.queued = false
}

// timeUpdateLoop periodically reports the playback position while the
// device is actively playing.
func (s *Speaker) timeUpdateLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			playing := s.queued && s.ctrl != nil
			if playing {
				speaker.Lock()
				playing = !s.ctrl.Paused
				speaker.Unlock()
			}
			var pos time.Duration
			if playing {
				pos = s.positionLocked()
			}
			s.mu.Unlock()

			if playing {
				s.emit(Event{Type: EventTimeUpdate, Position: pos})
			}
		}
	}
}

// emit sends an event without blocking; stale events are droppable.
func (s *Speaker) emit(ev Event) {
	select {
	case <-s.done:
	case s.events <- ev:
	default:
	}
}

// decode picks a decoder by file extension. Unknown extensions fall
// back to mp3, the dominant format for local collections.
func decode(path string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wav.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	default:
		return mp3.Decode(f)
	}
}
