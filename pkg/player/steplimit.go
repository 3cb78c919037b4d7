package player

import (
	"sync"
	"time"
)

// Step limiter defaults. Six step requests inside a two second window
// trip a three second lockout; below the threshold, requests are spaced
// at least 150ms apart.
const (
	DefaultStepWindow    = 2 * time.Second
	DefaultStepThreshold = 6
	DefaultStepCooldown  = 3 * time.Second
	DefaultStepSpacing   = 150 * time.Millisecond
)

// StepLimiter rate-limits frame-step requests. Each step forces a
// decoder seek, so a key held down or a burst of clicks can otherwise
// queue more work than the decoder can absorb.
type StepLimiter struct {
	window    time.Duration
	threshold int
	cooldown  time.Duration
	spacing   time.Duration
	now       func() time.Time

	mu          sync.Mutex
	attempts    []time.Time
	lockedUntil time.Time
	lastAllowed time.Time
}

// NewStepLimiter creates a limiter with the default window, threshold,
// cooldown and spacing.
func NewStepLimiter() *StepLimiter {
	return &StepLimiter{
		window:    DefaultStepWindow,
		threshold: DefaultStepThreshold,
		cooldown:  DefaultStepCooldown,
		spacing:   DefaultStepSpacing,
		now:       time.Now,
	}
}

// Allow reports whether a step request may proceed now. Denied requests
// are dropped by the caller, never queued.
func (l *StepLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Before(l.lockedUntil) {
		return false
	}

	// Slide the window, counting this attempt whether or not it is
	// ultimately allowed: a burst of denied clicks still indicates a
	// held key.
	cutoff := now.Add(-l.window)
	kept := l.attempts[:0]
	for _, t := range l.attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.attempts = append(kept, now)

	if len(l.attempts) >= l.threshold {
		l.lockedUntil = now.Add(l.cooldown)
		l.attempts = l.attempts[:0]
		return false
	}

	if !l.lastAllowed.IsZero() && now.Sub(l.lastAllowed) < l.spacing {
		return false
	}
	l.lastAllowed = now
	return true
}

// Locked reports whether the limiter is currently in a lockout.
func (l *StepLimiter) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now().Before(l.lockedUntil)
}
