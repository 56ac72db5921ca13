// Package debounce provides a timer-based coalescing utility: bursts of
// triggers collapse into a single invocation after a quiescence window.
package debounce

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer the debouncer needs. It exists so
// tests can inject a manual clock.
type Timer interface {
	Stop() bool
}

// Debouncer schedules a pending call and replaces it on every new trigger,
// so only the last call within a quiet window actually runs.
type Debouncer struct {
	window   time.Duration
	newTimer func(d time.Duration, fn func()) Timer

	mu      sync.Mutex
	pending Timer
	stopped bool
}

// New creates a Debouncer with the given quiescence window.
func New(window time.Duration) *Debouncer {
	return NewWithClock(window, func(d time.Duration, fn func()) Timer {
		return time.AfterFunc(d, fn)
	})
}

// NewWithClock creates a Debouncer with an injectable timer factory.
func NewWithClock(window time.Duration, newTimer func(d time.Duration, fn func()) Timer) *Debouncer {
	return &Debouncer{window: window, newTimer: newTimer}
}

// Call schedules fn to run after the quiescence window, replacing any
// previously pending call.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.pending != nil {
		d.pending.Stop()
	}
	d.pending = d.newTimer(d.window, fn)
}

// Stop cancels any pending call and rejects further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}
