package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces change notifications for one profile into
// rate-limited sync triggers. Observe and Due may run on different
// goroutines; the lock spans only the trigger decision, so a slow
// dispatch never blocks event intake.
type Debouncer struct {
	interval time.Duration
	excluded func(string) bool

	mu          sync.Mutex
	pending     bool
	lastTrigger time.Time
}

// NewDebouncer builds a debouncer whose first dispatch can happen no
// earlier than one interval after creation. excluded may be nil.
func NewDebouncer(interval time.Duration, excluded func(string) bool) *Debouncer {
	return &Debouncer{
		interval:    interval,
		excluded:    excluded,
		lastTrigger: time.Now(),
	}
}

// Observe records a change notification, suppressing excluded paths.
// It reports whether the change marked a sync as pending.
func (d *Debouncer) Observe(path string) bool {
	if d.excluded != nil && d.excluded(path) {
		return false
	}

	d.mu.Lock()
	d.pending = true
	d.mu.Unlock()

	return true
}

// Due consumes the pending trigger once the quiet period since the last
// trigger has elapsed. When it returns false any pending state is kept
// for the next tick.
func (d *Debouncer) Due(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pending || now.Sub(d.lastTrigger) < d.interval {
		return false
	}

	d.pending = false
	d.lastTrigger = now

	return true
}

// Pending reports whether unprocessed changes are waiting.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pending
}
