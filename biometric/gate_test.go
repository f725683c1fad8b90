package biometric

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReady(t *testing.T) {
	ctx := context.Background()

	assert.False(t, Ready(ctx, nil))
	assert.False(t, Ready(ctx, Unavailable{}))
	assert.True(t, Ready(ctx, Approving()))

	notEnrolled := NewStaticGate(Capability{Available: true, Kind: KindPlatform}, false, nil)
	assert.False(t, Ready(ctx, notEnrolled))
}

func TestUnavailableGate(t *testing.T) {
	ok, err := Unavailable{}.Authenticate(context.Background(), "export")
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrNotAvailable)
}

func TestTerminalGateDecisions(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{name: "confirmation word approves", answer: "yes", want: true},
		{name: "case and whitespace tolerated", answer: "  YES \n", want: true},
		{name: "anything else cancels", answer: "no", want: false},
		{name: "empty input cancels", answer: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewTerminalGate(io.Discard)
			g.ask = func(string) (string, error) { return tt.answer, nil }

			ok, err := g.Authenticate(context.Background(), "approve export")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestTerminalGateReadFailure(t *testing.T) {
	g := NewTerminalGate(io.Discard)
	g.ask = func(string) (string, error) { return "", errors.New("no tty") }

	ok, err := g.Authenticate(context.Background(), "approve export")
	assert.False(t, ok)
	require.Error(t, err)
}

func TestTerminalGateRejectsConcurrentChallenge(t *testing.T) {
	g := NewTerminalGate(io.Discard)
	started := make(chan struct{})
	release := make(chan struct{})
	g.ask = func(string) (string, error) {
		close(started)
		<-release
		return "yes", nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ok, err := g.Authenticate(context.Background(), "first")
		assert.True(t, ok)
		assert.NoError(t, err)
	}()

	<-started
	_, err := g.Authenticate(context.Background(), "second")
	require.ErrorIs(t, err, ErrChallengeInFlight)

	close(release)
	wg.Wait()
}

func TestStaticGateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Approving().Authenticate(ctx, "export")
	require.ErrorIs(t, err, context.Canceled)
}
