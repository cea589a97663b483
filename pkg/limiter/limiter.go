package limiter

import (
	"slices"
	"sync"
	"time"
)

// MemoryLimiter tracks failure timestamps per key (a client address on the
// agent) and reports when the failures inside a sliding window reach the
// configured threshold.
type MemoryLimiter struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	window   time.Duration
	limit    int
	now      func() time.Time
}

func NewMemoryLimiter(window time.Duration, limit int) *MemoryLimiter {
	return &MemoryLimiter{
		failures: make(map[string][]time.Time),
		window:   window,
		limit:    limit,
		now:      time.Now,
	}
}

// TooMany reports whether key reached the failure threshold.
func (l *MemoryLimiter) TooMany(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.recent(key)) >= l.limit
}

func (l *MemoryLimiter) Fail(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failures[key] = append(l.recent(key), l.now())
}

// Reset forgets the failures of key after a successful attempt.
func (l *MemoryLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.failures, key)
}

// recent drops the failures of key that fell out of the window.
func (l *MemoryLimiter) recent(key string) []time.Time {
	cutoff := l.now().Add(-l.window)

	kept := slices.DeleteFunc(l.failures[key], func(at time.Time) bool {
		return at.Before(cutoff)
	})

	if len(kept) == 0 {
		delete(l.failures, key)

		return nil
	}

	l.failures[key] = kept

	return kept
}
