package cache

import "time"

// Entry represents a single cached value with TTL metadata.
type Entry[T any] struct {
	// Key is the canonical cache key the value was stored under.
	Key string `json:"key"`

	// Value is the cached payload.
	Value T `json:"value"`

	// CreatedAt is the timestamp when the entry was written.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is the timestamp after which the entry reads as absent.
	ExpiresAt time.Time `json:"expires_at"`
}

// NewEntry creates an entry expiring ttl after now.
func NewEntry[T any](key string, value T, ttl time.Duration) *Entry[T] {
	now := time.Now()
	return &Entry[T]{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired checks if the entry has expired based on current time.
func (e *Entry[T]) IsExpired() bool {
	return e.expiredAt(time.Now())
}

// expiredAt reports expiry relative to an explicit clock reading.
func (e *Entry[T]) expiredAt(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Age returns the duration since the entry was written.
func (e *Entry[T]) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// TimeUntilExpiration returns the duration until the entry expires.
// Returns 0 if already expired.
func (e *Entry[T]) TimeUntilExpiration() time.Duration {
	remaining := time.Until(e.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
