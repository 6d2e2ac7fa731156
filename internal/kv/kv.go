// Package kv persists small per-user values (filter selections, form drafts)
// across sessions. Values are JSON encoded and kept in an in-memory mirror, so a
// failing backend degrades to a session-only store instead of surfacing errors
// to the UI.
package kv

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
)

// ErrUnavailable marks a backend that cannot be read or written.
var ErrUnavailable = errors.New("storage unavailable")

// ErrNotFound is returned by a backend for a key it does not hold.
var ErrNotFound = errors.New("key not found")

// Backend is durable raw storage for encoded values.
type Backend interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Store is a string-keyed value store. It is safe for concurrent use; the last
// write to a key wins, also across processes sharing one backend.
type Store struct {
	backend Backend

	mu     sync.Mutex
	mirror map[string][]byte
}

// New creates a store over backend. A nil backend keeps values in memory only.
func New(backend Backend) *Store {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	return &Store{backend: backend, mirror: make(map[string][]byte)}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Get returns the value stored under key, or fallback when nothing usable is
// stored. Backend and decoding failures are logged and yield fallback.
func Get[T any](s *Store, key string, fallback T) T {
	raw, ok := s.lookup(key)
	if !ok {
		return fallback
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Printf("kv: decode %q: %v", key, err)
		return fallback
	}
	return v
}

// Set stores v under key. The in-memory mirror is always updated; a backend
// failure is logged and the value lives on for the session.
func Set[T any](s *Store, key string, v T) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("kv: encode %q: %v", key, err)
		return
	}

	s.mu.Lock()
	s.mirror[key] = raw
	s.mu.Unlock()

	if err := s.backend.Save(key, raw); err != nil {
		log.Printf("kv: save %q: %v", key, err)
	}
}

// Delete forgets key. The mirror keeps a nil entry so that a failed backend
// delete cannot bring the old value back.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	s.mirror[key] = nil
	s.mu.Unlock()

	if err := s.backend.Delete(key); err != nil {
		log.Printf("kv: delete %q: %v", key, err)
	}
}

func (s *Store) lookup(key string) ([]byte, bool) {
	s.mu.Lock()
	raw, ok := s.mirror[key]
	s.mu.Unlock()
	if ok {
		return raw, raw != nil
	}

	raw, err := s.backend.Load(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("kv: load %q: %v", key, err)
		}
		return nil, false
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}

	s.mu.Lock()
	if _, written := s.mirror[key]; !written {
		s.mirror[key] = raw
	}
	s.mu.Unlock()
	return raw, true
}
