// Package lane sequences asynchronous work per concern. Each lane hands
// out monotonically increasing epochs paired with cancellable contexts;
// a completion is only allowed to touch shared state while its epoch is
// still the lane's newest. Requests that lost the race are signalled to
// abort, but correctness never depends on the abort landing: the epoch
// check alone keeps stale results out.
package lane

import (
	"context"
	"sync"
)

// Lane is a single sequencing channel. Separate concerns get separate
// lanes so superseding work on one never cancels in-flight work on
// another.
// Thread-safe for concurrent access.
type Lane struct {
	mu     sync.Mutex
	name   string
	epoch  uint64
	cancel context.CancelFunc
}

// New creates a lane. The name only shows up in logs.
func New(name string) *Lane {
	return &Lane{name: name}
}

// Name returns the lane's name.
func (l *Lane) Name() string {
	return l.name
}

// Begin supersedes any in-flight work on the lane: the previous context
// is cancelled, the epoch advances, and a fresh context derived from
// parent is issued for the new request.
func (l *Lane) Begin(parent context.Context) (uint64, context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	l.epoch++
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	return l.epoch, ctx
}

// IsCurrent reports whether epoch is still the lane's newest. Callers
// must check this after their request resolves and drop the result on
// false.
func (l *Lane) IsCurrent(epoch uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return epoch == l.epoch
}

// Epoch returns the lane's current epoch.
func (l *Lane) Epoch() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.epoch
}

// Cancel aborts any in-flight work and invalidates its epoch without
// starting new work. Used on shutdown and when the lane's subject goes
// away entirely, e.g. the selection is cleared.
func (l *Lane) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.epoch++
}
