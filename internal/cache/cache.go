// Package cache provides the content-addressed store for fetched reference
// metadata and full-text prefixes.
//
// Entries are keyed by a stable hash of the reference entry plus a purpose
// tag, never expire, and are trusted on every hit. A corrupt entry is treated
// as a miss so one bad file can never abort a run.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"
)

// Purpose separates metadata payloads from full-text payloads for the same
// reference. The two must never share a key.
type Purpose string

const (
	PurposeInfo    Purpose = "info"
	PurposeContent Purpose = "content"
)

// Store is the minimal get/set capability the fetcher depends on.
// Implementations must make same-key writes idempotent: concurrent workers
// may race on a not-yet-cached reference and both write the same payload.
type Store interface {
	// Get returns the cached payload for key, or ok=false on a miss.
	Get(key string) (payload []byte, ok bool)

	// Set stores payload under key. Overwriting an existing key with the
	// same payload is observationally a no-op.
	Set(key string, payload []byte) error
}

// Key derives the stable cache key for a reference-derived string and purpose.
func Key(refText string, purpose Purpose) string {
	sum := sha256.Sum256([]byte(refText + "_" + string(purpose)))
	return hex.EncodeToString(sum[:])
}

// FSStore persists entries as individual files in one directory.
type FSStore struct {
	dir    string
	logger *slog.Logger
}

// NewFSStore creates the directory if needed and returns a file-backed store.
func NewFSStore(dir string, logger *slog.Logger) (*FSStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FSStore{dir: dir, logger: logger}, nil
}

// Get reads the entry for key. Unreadable or non-UTF-8 content is logged and
// reported as a miss.
func (s *FSStore) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cache read failed, treating as miss", "key", key, "error", err)
		}
		return nil, false
	}
	if !utf8.Valid(data) {
		s.logger.Warn("corrupt cache entry, treating as miss", "key", key)
		return nil, false
	}
	return data, true
}

// Set writes the entry via a temp file and rename so concurrent writers of
// the same key land a complete payload.
func (s *FSStore) Set(key string, payload []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create cache temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cache entry: %w", err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit cache entry: %w", err)
	}
	return nil
}

func (s *FSStore) path(key string) string {
	// Keys are hex digests; strip anything else before joining.
	key = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') {
			return r
		}
		return -1
	}, key)
	return filepath.Join(s.dir, key)
}

// MemoryStore is an in-memory Store for tests and subjective-mode runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Get returns the stored payload for key.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.entries[key]
	return payload, ok
}

// Set stores payload under key.
func (s *MemoryStore) Set(key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.entries[key] = cp
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var (
	_ Store = (*FSStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
