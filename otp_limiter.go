package goSession

import (
	"sync"
	"time"
)

const (
	defaultOTPWindow      = 15 * time.Minute
	defaultOTPMaxAttempts = 3
)

// RateLimiter is the sliding-window brute-force guard for OTP verification,
// keyed by mobile number. It is intentionally in-memory only: a process
// restart resets protection. That tradeoff is accepted rather than papered
// over with persistence.
type RateLimiter struct {
	mu          sync.Mutex
	attempts    map[string][]time.Time
	window      time.Duration
	maxAttempts int
	now         func() time.Time
}

// NewRateLimiter creates a [RateLimiter]. Zero-value arguments fall back to
// the defaults (15m window / 3 attempts).
func NewRateLimiter(window time.Duration, maxAttempts int) *RateLimiter {
	if window <= 0 {
		window = defaultOTPWindow
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultOTPMaxAttempts
	}
	return &RateLimiter{
		attempts:    make(map[string][]time.Time),
		window:      window,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// IsAllowed reports whether a new attempt may proceed for key. It does not
// record an attempt.
func (l *RateLimiter) IsAllowed(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(key)) < l.maxAttempts
}

// RecordAttempt appends a timestamped attempt for key. Callers invoke it
// exactly once per failed verification and never on success.
func (l *RateLimiter) RecordAttempt(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[key] = append(l.prune(key), l.now())
}

// RemainingTime returns how long until the oldest in-window attempt ages
// out, which is when IsAllowed would next return true. Zero when already
// allowed.
func (l *RateLimiter) RemainingTime(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.prune(key)
	if len(recent) < l.maxAttempts {
		return 0
	}
	remaining := recent[0].Add(l.window).Sub(l.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears all recorded attempts for key. Called on successful
// verification and when an auto-unlock timer fires.
func (l *RateLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// AttemptCount returns the number of attempts currently inside the window
// for key.
func (l *RateLimiter) AttemptCount(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(key))
}

// prune drops attempts older than the window and stores the compacted slice.
// Caller must hold l.mu.
func (l *RateLimiter) prune(key string) []time.Time {
	cutoff := l.now().Add(-l.window)
	recent := l.attempts[key][:0:0]
	for _, at := range l.attempts[key] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}
	if len(recent) == 0 {
		delete(l.attempts, key)
		return nil
	}
	l.attempts[key] = recent
	return recent
}
