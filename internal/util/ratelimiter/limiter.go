package ratelimiter

import (
	"sync"
	"time"
)

// Limiter lets one event through per interval and counts the ones it drops.
// It is safe for concurrent use.
type Limiter struct {
	mu          sync.Mutex
	interval    time.Duration
	lastAllowed time.Time
	suppressed  int
}

// New creates a new limiter with the specified interval
func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
	}
}

// Allow reports whether an event may pass now. When it may, it also returns
// how many events were dropped since the previous one passed, and resets
// that count.
func (l *Limiter) Allow() (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if l.lastAllowed.IsZero() || now.Sub(l.lastAllowed) >= l.interval {
		l.lastAllowed = now
		dropped := l.suppressed
		l.suppressed = 0
		return true, dropped
	}

	l.suppressed++
	return false, 0
}

// Suppressed returns the number of events dropped since the last one passed
func (l *Limiter) Suppressed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.suppressed
}

// Reset clears the limiter state, allowing the next event immediately
func (l *Limiter) Reset() {
	l.mu.Lock()
	l.lastAllowed = time.Time{}
	l.suppressed = 0
	l.mu.Unlock()
}
