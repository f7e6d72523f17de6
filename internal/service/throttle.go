package service

import (
	"sync"
	"time"
)

const maxThrottleEntries = 10000

type attemptWindow struct {
	hits    int
	resetAt time.Time
}

// LoginThrottler counts failed logins per key. The window opens at the first
// failure; once maxAttempts failures land inside it the key stays locked until
// the window closes.
type LoginThrottler struct {
	mu          sync.Mutex
	maxAttempts int
	decay       time.Duration
	attempts    map[string]*attemptWindow
	now         func() time.Time
}

func NewLoginThrottler(maxAttempts int, decay time.Duration) *LoginThrottler {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &LoginThrottler{
		maxAttempts: maxAttempts,
		decay:       decay,
		attempts:    make(map[string]*attemptWindow),
		now:         time.Now,
	}
}

// TooManyAttempts reports whether key is locked out and for how long.
func (t *LoginThrottler) TooManyAttempts(key string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	w, ok := t.attempts[key]
	if !ok || !now.Before(w.resetAt) {
		return false, 0
	}
	if w.hits < t.maxAttempts {
		return false, 0
	}
	return true, w.resetAt.Sub(now)
}

// Hit records one failed attempt.
func (t *LoginThrottler) Hit(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	w, ok := t.attempts[key]
	if !ok || !now.Before(w.resetAt) {
		if !ok && len(t.attempts) >= maxThrottleEntries {
			t.pruneLocked(now)
		}
		w = &attemptWindow{resetAt: now.Add(t.decay)}
		t.attempts[key] = w
	}
	w.hits++
}

// Clear forgets every failure recorded for key.
func (t *LoginThrottler) Clear(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, key)
}

// pruneLocked drops windows that have closed.
func (t *LoginThrottler) pruneLocked(now time.Time) {
	for key, w := range t.attempts {
		if !now.Before(w.resetAt) {
			delete(t.attempts, key)
		}
	}
}
