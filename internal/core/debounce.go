package core

import (
	"sync"
	"time"
)

// DebounceWindow is the minimum spacing between two accepted raw edges on
// the same button.
const DebounceWindow = 50 * time.Millisecond

// Debouncer filters raw button edges down to at most one accepted edge per
// debounce window per button. It keeps only per-button timestamps, so it is
// safe to evaluate outside the state machine's critical section; the edge
// goroutines call it concurrently.
type Debouncer struct {
	window time.Duration

	mu   sync.Mutex
	last map[string]time.Duration
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		last:   make(map[string]time.Duration),
	}
}

// Accept reports whether an edge at the given monotonic timestamp should
// produce a logical press. A rejected edge leaves the stored timestamp
// unchanged, so a burst of bounces within one window yields exactly one
// event.
func (d *Debouncer) Accept(channel string, timestamp time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	last, seen := d.last[channel]
	if seen && timestamp < last+d.window {
		return false
	}
	d.last[channel] = timestamp
	return true
}
