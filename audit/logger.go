// Package audit keeps a bounded, sanitized trail of security-relevant
// wallet events. Raw secret material never enters an entry: details are
// redacted before storage and before the optional external sink sees them.
package audit

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/clock"
)

// EventType classifies an audit entry.
type EventType string

const (
	EventWalletCreated   EventType = "wallet.created"
	EventWalletRecovered EventType = "wallet.recovered"
	EventWalletImported  EventType = "wallet.imported"
	EventWalletLoaded    EventType = "wallet.loaded"
	EventWalletDeleted   EventType = "wallet.deleted"

	EventExportAttempt EventType = "export.attempt"
	EventExportSuccess EventType = "export.success"
	EventExportFailure EventType = "export.failure"

	EventRateLimitTriggered EventType = "ratelimit.triggered"
	EventAuthFailed         EventType = "auth.failed"
	EventOperationFailed    EventType = "operation.failed"
	EventSecurityViolation  EventType = "security.violation"
)

// DefaultCapacity bounds the in-memory trail.
const DefaultCapacity = 100

// Entry is one sanitized audit record.
type Entry struct {
	ID          uuid.UUID         `json:"id"`
	Type        EventType         `json:"type"`
	Time        time.Time         `json:"time"`
	Details     map[string]string `json:"details,omitempty"`
	AddressHint string            `json:"address_hint,omitempty"`
}

// Sink receives every sanitized entry. A panicking sink is contained; it
// never propagates to the logging caller.
type Sink func(Entry)

// Config configures a Logger. The zero value is usable.
type Config struct {
	Capacity int
	Sink     Sink
	Clock    clock.Clock
	Logger   *slog.Logger
}

// Logger is a fixed-capacity FIFO of sanitized security events. Safe for
// concurrent use; eviction drops the oldest entry on overflow.
type Logger struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
	sink     Sink
	clock    clock.Clock
	log      *slog.Logger
}

// NewLogger returns a Logger with defaults applied.
func NewLogger(cfg Config) *Logger {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Logger{
		capacity: cfg.Capacity,
		entries:  make([]Entry, 0, cfg.Capacity),
		sink:     cfg.Sink,
		clock:    cfg.Clock,
		log:      cfg.Logger,
	}
}

// Log records an event. details may be nil; addr may be a full address,
// it is masked before storage.
func (l *Logger) Log(typ EventType, details map[string]any, addr string) {
	entry := Entry{
		ID:          uuid.New(),
		Type:        typ,
		Time:        l.clock.Now().UTC(),
		Details:     sanitizeDetails(details),
		AddressHint: MaskAddress(addr),
	}

	l.mu.Lock()
	if len(l.entries) >= l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, entry)
	sink := l.sink
	l.mu.Unlock()

	l.log.Info("security event",
		slog.String("event", string(typ)),
		slog.String("entry_id", entry.ID.String()),
		slog.String("address_hint", entry.AddressHint),
	)

	if sink != nil {
		l.dispatch(sink, entry)
	}
}

// dispatch shields callers from a misbehaving sink.
func (l *Logger) dispatch(sink Sink, entry Entry) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("audit sink panicked", slog.Any("panic", r))
		}
	}()
	sink(entry)
}

// ExportAttempt records the start of a secret export operation.
func (l *Logger) ExportAttempt(op string, addr string) {
	l.Log(EventExportAttempt, map[string]any{"operation": op}, addr)
}

// RateLimitTriggered records a rejected attempt and the retry hint.
func (l *Logger) RateLimitTriggered(op string, retryAfter time.Duration) {
	l.Log(EventRateLimitTriggered, map[string]any{
		"operation":   op,
		"retry_after": retryAfter.Round(time.Second).String(),
	}, "")
}

// SecurityViolation records behavior that should never occur in a healthy
// installation.
func (l *Logger) SecurityViolation(description string, details map[string]any) {
	merged := map[string]any{"description": description}
	for k, v := range details {
		merged[k] = v
	}
	l.Log(EventSecurityViolation, merged, "")
}

// Recent returns up to n entries, newest first.
func (l *Logger) Recent(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = l.entries[len(l.entries)-1-i]
	}
	return out
}

// Clear drops every stored entry.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// Len reports the number of stored entries.
func (l *Logger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
