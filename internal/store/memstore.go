package store

import (
	"sort"
	"sync"

	"github.com/heysubinoy/localkv/pkg/kv"
)

// MemStore is an in-memory implementation of the kv.Backend interface.
// It uses a map protected by a RWMutex for thread-safe operations.
//
// When a quota is set, the combined length of keys and values may not
// exceed it and Set fails with kv.ErrQuotaExceeded instead.
type MemStore struct {
	mu    sync.RWMutex
	data  map[string]string
	size  int
	quota int
}

// Compile-time check to ensure MemStore implements kv.Backend.
var _ kv.Backend = (*MemStore)(nil)

// MemOption configures a MemStore.
type MemOption func(*MemStore)

// WithQuota caps the number of bytes (keys plus values) the store may hold.
// A quota of zero or less means unlimited.
func WithQuota(bytes int) MemOption {
	return func(s *MemStore) {
		s.quota = bytes
	}
}

// NewMemStore creates and returns a new MemStore instance.
func NewMemStore(opts ...MemOption) *MemStore {
	s := &MemStore{
		data: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves a value by key from the store.
// Returns the value and true if found, empty string and false otherwise.
func (s *MemStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok, nil
}

// Set stores a key-value pair in the store.
func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.size + len(key) + len(value)
	if old, ok := s.data[key]; ok {
		next -= len(key) + len(old)
	}
	if s.quota > 0 && next > s.quota {
		return kv.ErrQuotaExceeded
	}

	s.data[key] = value
	s.size = next
	return nil
}

// Delete removes a key from the store.
// Always returns nil, even if the key doesn't exist.
func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.data[key]; ok {
		s.size -= len(key) + len(old)
		delete(s.data, key)
	}
	return nil
}

// Clear drops every entry.
func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]string)
	s.size = 0
	return nil
}

// Len returns the number of stored keys.
func (s *MemStore) Len() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data), nil
}

// Keys returns the stored keys in sorted order.
func (s *MemStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Snapshot returns a copy of the stored data.
func (s *MemStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Replace swaps the stored data for the given map. The quota is not
// enforced on replacement.
func (s *MemStore) Replace(data map[string]string) {
	size := 0
	next := make(map[string]string, len(data))
	for k, v := range data {
		next[k] = v
		size += len(k) + len(v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = next
	s.size = size
}
