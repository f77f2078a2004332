// Package debounce coalesces bursts of identical triggers into one
// effect. Slider drags and stepper button repeats funnel through a
// debouncer so only the final position of a burst causes a fetch;
// actions that must feel instantaneous, like a feature click, bypass it.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiet period a burst must observe before the
// effect runs.
const DefaultWindow = 120 * time.Millisecond

// Debouncer wraps an effect function of one argument. Every Trigger
// resets the delay timer; once a full window passes without another
// Trigger, the effect runs exactly once with the argument of the last
// call.
// Thread-safe for concurrent access.
type Debouncer[T any] struct {
	mu      sync.Mutex
	window  time.Duration
	fn      func(T)
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// New creates a debouncer around fn. A non-positive window falls back
// to DefaultWindow.
func New[T any](window time.Duration, fn func(T)) *Debouncer[T] {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer[T]{
		window: window,
		fn:     fn,
	}
}

// Trigger schedules the effect with v, replacing any pending schedule.
// The replaced call never runs; no separate cancel surface exists
// because a newer Trigger is the cancellation.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		// A Trigger or Stop that raced the timer firing wins.
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()
		d.fn(v)
	})
}

// Stop drops any pending effect and makes further Triggers no-ops.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Window returns the configured quiet period.
func (d *Debouncer[T]) Window() time.Duration {
	return d.window
}
