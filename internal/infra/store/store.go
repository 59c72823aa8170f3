// Package store provides durable key/value persistence backed by BoltDB.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

var bucketState = []byte("state")

// Persistence keys. Values are JSON documents; the key names are the
// on-disk contract and must stay stable across versions.
const (
	KeySongs     = "bm_songs"
	KeyPlaylists = "bm_playlists"
	KeyFavorites = "bm_favs"
	KeyQueue     = "bm_queue"
	KeyCurrent   = "bm_current"
	KeyPlaying   = "bm_playing"
	KeyTab       = "bm_tab"
)

// Store is a key/value store with JSON serialization and a best-effort
// durability contract: Read never fails the caller (missing key, broken
// data or storage trouble all fall back to the caller's default), and
// Write swallows failures so in-memory state stays authoritative for
// the session.
type Store struct {
	db *bolt.DB

	mu  sync.RWMutex
	mem map[string][]byte // memory-only mode when no path is configured
}

// Open opens (or creates) the state database at path.
// An empty path yields a memory-only store with no persistence.
func Open(path string) (*Store, error) {
	if path == "" {
		return &Store{mem: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create state directory")
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open state db")
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create state bucket")
	}

	return &Store{db: db}, nil
}

// Close closes the backing database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Read unmarshals the value stored under key into dest.
// Returns false and leaves dest untouched when the key is missing, the
// stored data does not parse, or storage is unavailable; callers keep
// their default in that case.
func (s *Store) Read(key string, dest any) bool {
	data, ok := s.raw(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		zlog.Debug().Msgf("store: discarding unreadable value: key=%s err=%v", key, err)
		return false
	}
	return true
}

// Write stores value under key. Failures are logged and swallowed.
func (s *Store) Write(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		zlog.Debug().Msgf("store: failed to marshal value: key=%s err=%v", key, err)
		return
	}

	if s.db == nil {
		s.mu.Lock()
		s.mem[key] = data
		s.mu.Unlock()
		return
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Put([]byte(key), data)
	})
	if err != nil {
		zlog.Warn().Msgf("store: write failed, keeping in-memory state only: key=%s err=%v", key, err)
	}
}

// Delete removes the value stored under key, if any.
func (s *Store) Delete(key string) {
	if s.db == nil {
		s.mu.Lock()
		delete(s.mem, key)
		s.mu.Unlock()
		return
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Delete([]byte(key))
	})
	if err != nil {
		zlog.Warn().Msgf("store: delete failed: key=%s err=%v", key, err)
	}
}

func (s *Store) raw(key string) ([]byte, bool) {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		data, ok := s.mem[key]
		return data, ok
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketState).Get([]byte(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		zlog.Debug().Msgf("store: read failed: key=%s err=%v", key, err)
		return nil, false
	}
	return data, data != nil
}
