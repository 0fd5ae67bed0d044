// Package debounce delays a call until its input has been quiet for a while.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used when none is given.
const DefaultDelay = 500 * time.Millisecond

// Debouncer applies only the last value pushed within a quiet window.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64 // bumped by every Push, Flush and Stop
	pending T
	armed   bool
	stopped bool
}

// New creates a Debouncer that calls fn with the last pushed value once
// delay has passed without another Push.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Push records v and restarts the quiet window.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = v
	d.armed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Flush applies the pending value now, if any.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	v, ok := d.take()
	d.mu.Unlock()

	if ok {
		d.fn(v)
	}
}

// Stop discards the pending value. Later pushes are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.armed = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// fire runs when the timer of Push number gen expires. A callback that was
// already running when a later Push, Flush or Stop took the lock is stale.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	v, ok := d.take()
	d.mu.Unlock()

	if ok {
		d.fn(v)
	}
}

// take must be called with mu held.
func (d *Debouncer[T]) take() (T, bool) {
	var zero T
	if !d.armed || d.stopped {
		return zero, false
	}
	v := d.pending
	d.pending = zero
	d.armed = false
	return v, true
}
