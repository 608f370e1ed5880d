// Package storage is the local persistence gateway: a narrow JSON
// key-value layer the engagement store writes through. Reads tolerate
// corrupt or missing values (treated as absent), writes never propagate
// backend failures to callers.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

type Store interface {
	// Get decodes the value stored under key into dst and reports whether
	// a usable value was present. Missing keys and undecodable payloads
	// both report false.
	Get(key string, dst any) bool
	// Set encodes v and stores it under key. Backend failures are logged
	// and swallowed: the value is simply not persisted.
	Set(key string, v any)
	Remove(key string)
}

// MemStore keeps values in memory. Used in tests and when no durable
// backend is configured.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Get(key string, dst any) bool {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (s *MemStore) Set(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
}

func (s *MemStore) Remove(key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

// SetRaw stores an already-encoded (possibly invalid) payload. Tests use
// it to simulate corrupted state.
func (s *MemStore) SetRaw(key string, raw []byte) {
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
}

// FileStore persists each key as a JSON file under a state directory.
type FileStore struct {
	dir    string
	logger *log.Logger
	mu     sync.Mutex
}

func NewFileStore(dir string, logger *log.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) path(key string) string {
	// Keys are fixed identifiers, but keep path separators out anyway.
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}

func (s *FileStore) Get(key string, dst any) bool {
	s.mu.Lock()
	raw, err := os.ReadFile(s.path(key))
	s.mu.Unlock()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (s *FileStore) Set(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("storage: encode failed", "key", key, "err", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		s.logger.Warn("storage: write failed", "key", key, "err", err)
		return
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		s.logger.Warn("storage: rename failed", "key", key, "err", err)
	}
}

func (s *FileStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("storage: remove failed", "key", key, "err", err)
	}
}
