package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Store is a disk-backed key-value cache with per-entry expiry. Values are
// JSON-serialized, one file per key. Safe for concurrent use.
type Store struct {
	dir     string
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	Key       string          `json:"key"`
	ExpiresAt time.Time       `json:"expires_at"`
	Value     json.RawMessage `json:"value"`
}

// Open loads the cache directory, dropping entries that have expired.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	s := &Store{
		dir:     dir,
		entries: make(map[string]entry),
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache dir: %w", err)
	}

	now := time.Now()
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(data, &e); err != nil || e.Key == "" {
			// Not one of ours; leave it alone.
			continue
		}
		if now.After(e.ExpiresAt) {
			os.Remove(path)
			continue
		}
		s.entries[e.Key] = e
	}

	return s, nil
}

// Set stores value under key with the given time to live, replacing any
// previous entry.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	e := entry{
		Key:       key,
		ExpiresAt: time.Now().Add(ttl),
		Value:     raw,
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	s.entries[key] = e
	return nil
}

// Get unmarshals the value stored under key into out. Expired entries are
// evicted and reported as missing.
func (s *Store) Get(key string, out interface{}) bool {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return false
	}
	if time.Now().After(e.ExpiresAt) {
		s.Delete(key)
		return false
	}
	return json.Unmarshal(e.Value, out) == nil
}

// Contains reports whether key is cached and not expired.
func (s *Store) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	return ok && time.Now().Before(e.ExpiresAt)
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cache entry: %w", err)
		}
		delete(s.entries, key)
	}
	return nil
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	count := 0
	for _, e := range s.entries {
		if now.Before(e.ExpiresAt) {
			count++
		}
	}
	return count
}

// Dir returns the cache directory path.
func (s *Store) Dir() string {
	return s.dir
}

// path maps a key to its file, hashing so arbitrary keys stay
// filesystem-safe.
func (s *Store) path(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(h[:8])+".json")
}
