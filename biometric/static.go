package biometric

import (
	"context"
	"sync"
)

// StaticGate is a scriptable Gate for tests and non-interactive hosts.
// It answers every challenge with a fixed decision and records prompts.
type StaticGate struct {
	mu      sync.Mutex
	cap     Capability
	approve bool
	err     error

	Prompts []string
}

var _ Gate = (*StaticGate)(nil)

// NewStaticGate returns a gate that reports cap and resolves every
// challenge to (approve, err).
func NewStaticGate(cap Capability, approve bool, err error) *StaticGate {
	return &StaticGate{cap: cap, approve: approve, err: err}
}

// Approving is a ready gate that approves everything.
func Approving() *StaticGate {
	return NewStaticGate(Capability{Available: true, Enrolled: true, Kind: KindPlatform}, true, nil)
}

// Declining is a ready gate on which the user always cancels.
func Declining() *StaticGate {
	return NewStaticGate(Capability{Available: true, Enrolled: true, Kind: KindPlatform}, false, nil)
}

func (g *StaticGate) Capability(context.Context) Capability {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cap
}

func (g *StaticGate) Authenticate(ctx context.Context, prompt string) (bool, error) {
	if !g.mu.TryLock() {
		return false, ErrChallengeInFlight
	}
	defer g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}
	g.Prompts = append(g.Prompts, prompt)
	return g.approve, g.err
}
