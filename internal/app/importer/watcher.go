// Package importer watches a directory and adds dropped audio files to
// the library.
package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	zlog "github.com/rs/zerolog/log"

	"github.com/okizeme/bytemusic/internal/domain/song"
)

// Library is the intake surface the watcher needs.
type Library interface {
	AddUpload(srcURI, coverURI string) song.Song
	HasSource(uri string) bool
}

// Watcher turns files dropped into a directory into library uploads.
type Watcher struct {
	dir     string
	library Library
	fs      *fsnotify.Watcher
}

// New creates a watcher for dir, creating the directory if needed.
func New(dir string, lib Library) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create import directory")
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fs watcher")
	}
	if err := fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, errors.Wrap(err, "failed to watch import directory")
	}

	return &Watcher{dir: dir, library: lib, fs: fs}, nil
}

// Run imports files already present, then processes filesystem events
// until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer func() { _ = w.fs.Close() }()

	w.scanExisting()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename) {
				w.maybeImport(ev.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			zlog.Warn().Msgf("importer: watch error: %v", err)
		}
	}
}

func (w *Watcher) scanExisting() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		zlog.Warn().Msgf("importer: cannot scan import directory: %v", err)
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.maybeImport(filepath.Join(w.dir, e.Name()))
		}
	}
}

func (w *Watcher) maybeImport(path string) {
	if !IsAudioFile(path) {
		return
	}
	if w.library.HasSource(path) {
		return
	}
	sg := w.library.AddUpload(path, "")
	zlog.Info().Msgf("importer: added %s as %q", path, sg.Title)
}

// IsAudioFile reports whether the path has a playable audio extension.
func IsAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav", ".flac", ".ogg":
		return true
	default:
		return false
	}
}
