// Package ratelimit guards sensitive wallet operations with a sliding
// attempt window followed by a hard cooldown. State is per operation key
// and lives only for the process lifetime; a restart clears it, which is a
// known weakness of the original design kept deliberately (persisting
// counters would add a tampering surface instead).
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/clock"
)

// Policy bounds attempts for one call site.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
	Cooldown    time.Duration
}

// DefaultExportPolicy is the policy applied to secret export operations.
func DefaultExportPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Window:      time.Minute,
		Cooldown:    5 * time.Minute,
	}
}

// LimitError reports a rejected attempt and when retrying becomes useful.
type LimitError struct {
	Key        string
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry in %s", e.Key, e.RetryAfter.Round(time.Second))
}

// record tracks one operation key. Either attempts accumulate (open) or
// cooldownEnd is set (cooldown); never both.
type record struct {
	attempts    []time.Time
	cooldownEnd time.Time
}

// Limiter applies policies per operation key. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	clock   clock.Clock
	records map[string]*record
}

// New returns a Limiter on the given clock. A nil clock uses wall time.
func New(c clock.Clock) *Limiter {
	if c == nil {
		c = clock.NewDefaultClock()
	}
	return &Limiter{
		clock:   c,
		records: make(map[string]*record),
	}
}

// Check records one attempt against key under p. It returns a *LimitError
// when the attempt is rejected, either because a cooldown is active or
// because this attempt exceeded the window budget and started one.
func (l *Limiter) Check(key string, p Policy) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	rec := l.records[key]
	if rec == nil {
		rec = &record{}
		l.records[key] = rec
	}

	if !rec.cooldownEnd.IsZero() {
		if now.Before(rec.cooldownEnd) {
			return &LimitError{Key: key, RetryAfter: rec.cooldownEnd.Sub(now)}
		}
		// Cooldown served. Reopen with a clean window.
		rec.cooldownEnd = time.Time{}
		rec.attempts = nil
	}

	rec.attempts = pruneBefore(rec.attempts, now.Add(-p.Window))
	if len(rec.attempts) >= p.MaxAttempts {
		rec.cooldownEnd = now.Add(p.Cooldown)
		rec.attempts = nil
		return &LimitError{Key: key, RetryAfter: p.Cooldown}
	}

	rec.attempts = append(rec.attempts, now)
	return nil
}

// RemainingAttempts is a read-only projection for UI feedback: how many
// attempts key has left under p before a cooldown starts.
func (l *Limiter) RemainingAttempts(key string, p Policy) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	rec := l.records[key]
	if rec == nil {
		return p.MaxAttempts
	}
	if !rec.cooldownEnd.IsZero() && now.Before(rec.cooldownEnd) {
		return 0
	}

	// Count without pruning: a projection must leave the record intact.
	used := 0
	cutoff := now.Add(-p.Window)
	for _, t := range rec.attempts {
		if t.After(cutoff) {
			used++
		}
	}
	if used >= p.MaxAttempts {
		return 0
	}
	return p.MaxAttempts - used
}

// CooldownEnd reports the active cooldown deadline for key, if any.
func (l *Limiter) CooldownEnd(key string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.records[key]
	if rec == nil || rec.cooldownEnd.IsZero() {
		return time.Time{}, false
	}
	if !l.clock.Now().Before(rec.cooldownEnd) {
		return time.Time{}, false
	}
	return rec.cooldownEnd, true
}

// Reset clears all state for key. Administrative and test use only; must
// not be reachable from untrusted call paths.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, key)
}

// ResetAll clears every key.
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = make(map[string]*record)
}

// pruneBefore drops timestamps at or before cutoff, keeping order.
func pruneBefore(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
