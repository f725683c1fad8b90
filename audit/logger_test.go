package audit

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(cfg Config) *Logger {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewTestClock(time.Unix(1_700_000_000, 0))
	}
	return NewLogger(cfg)
}

func TestLogStoresSanitizedEntry(t *testing.T) {
	l := newTestLogger(Config{})

	l.Log(EventExportAttempt, map[string]any{
		"operation":  "export_mnemonic",
		"privateKey": "0x" + strings.Repeat("aa", 32),
	}, "0x9858EfFD232B4033E47d90003D41EC34Ecaeda94")

	entries := l.Recent(1)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, EventExportAttempt, e.Type)
	assert.Equal(t, "export_mnemonic", e.Details["operation"])
	assert.Equal(t, RedactedMarker, e.Details["privateKey"])
	assert.Equal(t, "0x9858...da94", e.AddressHint)
	assert.NotZero(t, e.ID)
	assert.False(t, e.Time.IsZero())
}

func TestCapacityEvictsOldest(t *testing.T) {
	l := newTestLogger(Config{Capacity: 3})

	for i := 0; i < 5; i++ {
		l.Log(EventWalletLoaded, map[string]any{"n": fmt.Sprint(i)}, "")
	}

	assert.Equal(t, 3, l.Len())
	entries := l.Recent(0)
	require.Len(t, entries, 3)
	// Newest first; 0 and 1 were evicted.
	assert.Equal(t, "4", entries[0].Details["n"])
	assert.Equal(t, "3", entries[1].Details["n"])
	assert.Equal(t, "2", entries[2].Details["n"])
}

func TestRecentBounds(t *testing.T) {
	l := newTestLogger(Config{})
	l.Log(EventWalletCreated, nil, "")
	l.Log(EventWalletDeleted, nil, "")

	assert.Len(t, l.Recent(1), 1)
	assert.Len(t, l.Recent(10), 2)
	assert.Len(t, l.Recent(-1), 2)
	assert.Equal(t, EventWalletDeleted, l.Recent(1)[0].Type)

	l.Clear()
	assert.Empty(t, l.Recent(10))
}

func TestSinkReceivesSanitizedEntries(t *testing.T) {
	var got []Entry
	l := newTestLogger(Config{Sink: func(e Entry) { got = append(got, e) }})

	l.Log(EventExportSuccess, map[string]any{"mnemonic": "does not matter"}, "")

	require.Len(t, got, 1)
	assert.Equal(t, RedactedMarker, got[0].Details["mnemonic"])
}

func TestPanickingSinkIsContained(t *testing.T) {
	l := newTestLogger(Config{Sink: func(Entry) { panic("sink exploded") }})

	require.NotPanics(t, func() {
		l.Log(EventSecurityViolation, nil, "")
	})
	assert.Equal(t, 1, l.Len())
}

func TestHelpers(t *testing.T) {
	l := newTestLogger(Config{})

	l.ExportAttempt("export_privkey", "0x9858EfFD232B4033E47d90003D41EC34Ecaeda94")
	l.RateLimitTriggered("export_privkey", 299*time.Second+600*time.Millisecond)
	l.SecurityViolation("store tampering detected", map[string]any{"key": "ignored"})

	entries := l.Recent(3)
	require.Len(t, entries, 3)
	assert.Equal(t, EventSecurityViolation, entries[0].Type)
	assert.Equal(t, RedactedMarker, entries[0].Details["key"])
	assert.Equal(t, "store tampering detected", entries[0].Details["description"])
	assert.Equal(t, EventRateLimitTriggered, entries[1].Type)
	assert.Equal(t, "5m0s", entries[1].Details["retry_after"])
	assert.Equal(t, EventExportAttempt, entries[2].Type)
	assert.Equal(t, "0x9858...da94", entries[2].AddressHint)
}

func TestConcurrentLogging(t *testing.T) {
	l := newTestLogger(Config{Capacity: 10, Clock: clock.NewDefaultClock()})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Log(EventWalletLoaded, nil, "")
			l.Recent(5)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, l.Len())
}
