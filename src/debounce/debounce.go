// Package debounce coalesces bursts of events into one trailing callback
// using a generation counter: every Trigger bumps the generation and only
// the timer that still matches it when the delay elapses fires.
package debounce

import (
	"context"
	"sync"
	"time"
)

type Debouncer struct {
	mu         sync.Mutex
	delay      time.Duration
	generation uint64
	after      func(time.Duration, func()) // injectable for tests
}

func New(delay time.Duration) *Debouncer {
	return NewWithScheduler(delay, func(d time.Duration, fn func()) {
		time.AfterFunc(d, fn)
	})
}

// NewWithScheduler uses a custom timer scheduler, so callers can drive
// time by hand.
func NewWithScheduler(delay time.Duration, after func(time.Duration, func())) *Debouncer {
	return &Debouncer{delay: delay, after: after}
}

// Trigger schedules fn after the configured delay. A newer Trigger before
// the delay elapses supersedes this one; the superseded fn never runs.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	d.generation++
	gen := d.generation
	d.mu.Unlock()

	d.after(d.delay, func() {
		d.mu.Lock()
		current := d.generation
		d.mu.Unlock()
		if current == gen {
			fn()
		}
	})
}

// Cancel invalidates any pending trigger without scheduling a new one.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	d.generation++
	d.mu.Unlock()
}

// Ordinal hands out monotonically increasing tickets and remembers the
// newest one, so an async result can be dropped when a later request has
// already been issued.
type Ordinal struct {
	mu     sync.Mutex
	latest uint64
}

// Next issues a new ticket, superseding all earlier ones.
func (o *Ordinal) Next() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.latest++
	return o.latest
}

// Latest reports whether ticket is still the newest issued.
func (o *Ordinal) Latest(ticket uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return ticket == o.latest
}

// Sleep blocks for d or until ctx is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
