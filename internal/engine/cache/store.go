package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Common cache errors.
var (
	ErrCacheNotFound   = errors.New("cache entry not found")
	ErrCacheExpired    = errors.New("cache entry expired")
	ErrInvalidCacheKey = errors.New("invalid cache key")
	ErrCacheDisabled   = errors.New("cache is disabled")
)

// Store is the read/write surface shared by the memory and Redis
// backends. Get returns ErrCacheNotFound for absent keys and
// ErrCacheExpired for entries past their TTL; both read as a miss.
type Store[T any] interface {
	Get(ctx context.Context, key string) (T, error)
	Put(ctx context.Context, key string, value T) error
	Remove(ctx context.Context, key string) error
}

// Stats is a point-in-time snapshot of one store's counters.
type Stats struct {
	Entries   int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Expired   uint64
	Evictions uint64
}

// StatsReporter is implemented by backends that track counters.
type StatsReporter interface {
	Stats() Stats
}

// MemoryStore is a bounded in-process store with lazy TTL expiry.
// Eviction is strictly by insertion order: when the entry count exceeds
// the cap, the oldest-written entry goes first, regardless of how
// recently it was read. Replacing an existing key keeps its original
// position in the eviction order.
// Thread-safe for concurrent access.
type MemoryStore[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	cap     int
	entries map[string]*Entry[T]

	// order holds live keys oldest-first.
	order []string

	hits      uint64
	misses    uint64
	expired   uint64
	evictions uint64

	// now is swappable for tests.
	now func() time.Time
}

// NewMemoryStore creates a memory store with the given TTL and entry
// cap. Non-positive arguments fall back to the defaults.
func NewMemoryStore[T any](ttl time.Duration, maxEntries int) *MemoryStore[T] {
	if ttl <= 0 {
		ttl = time.Duration(DefaultTTLSeconds) * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore[T]{
		ttl:     ttl,
		cap:     maxEntries,
		entries: make(map[string]*Entry[T]),
		now:     time.Now,
	}
}

// Get retrieves the value stored under key.
// Returns ErrCacheNotFound if the key is absent.
// Returns ErrCacheExpired if the entry is past its TTL. The stale entry
// stays in place until eviction or replacement removes it.
func (s *MemoryStore[T]) Get(_ context.Context, key string) (T, error) {
	var zero T
	if key == "" {
		return zero, ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		s.misses++
		return zero, ErrCacheNotFound
	}
	if entry.expiredAt(s.now()) {
		s.expired++
		return zero, ErrCacheExpired
	}
	s.hits++
	return entry.Value, nil
}

// Put stores value under key, superseding any existing entry, then runs
// eviction. A replaced key keeps its original slot in the insertion
// order.
func (s *MemoryStore[T]) Put(_ context.Context, key string, value T) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry := &Entry[T]{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if _, exists := s.entries[key]; !exists {
		s.order = append(s.order, key)
	}
	s.entries[key] = entry
	s.evictLocked()
	return nil
}

// Remove deletes the entry under key.
// Returns nil if the entry doesn't exist (idempotent).
func (s *MemoryStore[T]) Remove(_ context.Context, key string) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	s.dropFromOrderLocked(key)
	return nil
}

// Clear removes all entries and resets the insertion order. Counters
// are kept.
func (s *MemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry[T])
	s.order = s.order[:0]
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats returns a snapshot of the store's counters.
func (s *MemoryStore[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Entries:   len(s.entries),
		Capacity:  s.cap,
		Hits:      s.hits,
		Misses:    s.misses,
		Expired:   s.expired,
		Evictions: s.evictions,
	}
}

// TTL returns the store's entry lifetime.
func (s *MemoryStore[T]) TTL() time.Duration {
	return s.ttl
}

// evictLocked removes oldest-written entries until the count is within
// the cap. Caller holds s.mu.
func (s *MemoryStore[T]) evictLocked() {
	for len(s.entries) > s.cap && len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
		s.evictions++
	}
}

// dropFromOrderLocked removes key from the insertion order. Caller
// holds s.mu.
func (s *MemoryStore[T]) dropFromOrderLocked(key string) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// DisabledStore rejects every operation with ErrCacheDisabled. It backs
// the cache.enabled=false configuration so callers keep a non-nil store.
type DisabledStore[T any] struct{}

// NewDisabledStore creates a store that never caches.
func NewDisabledStore[T any]() DisabledStore[T] {
	return DisabledStore[T]{}
}

// Get always reports the cache as disabled.
func (DisabledStore[T]) Get(context.Context, string) (T, error) {
	var zero T
	return zero, ErrCacheDisabled
}

// Put always reports the cache as disabled.
func (DisabledStore[T]) Put(context.Context, string, T) error {
	return ErrCacheDisabled
}

// Remove always reports the cache as disabled.
func (DisabledStore[T]) Remove(context.Context, string) error {
	return ErrCacheDisabled
}
