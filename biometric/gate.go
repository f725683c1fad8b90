// Package biometric defines the authentication gate consulted before
// sensitive wallet operations. Hosts with platform biometrics plug in
// their own Gate; headless hosts get a terminal confirmation gate.
package biometric

import (
	"context"
	"errors"
)

// Sentinel errors
var (
	ErrNotAvailable      = errors.New("biometric: authentication not available on this host")
	ErrNotEnrolled       = errors.New("biometric: no authentication method enrolled")
	ErrChallengeInFlight = errors.New("biometric: another challenge is already in progress")
)

// Kind names the authentication mechanism a gate uses.
type Kind string

const (
	KindNone     Kind = "none"
	KindTerminal Kind = "terminal"
	KindPlatform Kind = "platform"
)

// Capability reports what a gate can do on the current host.
type Capability struct {
	Available bool
	Enrolled  bool
	Kind      Kind
}

// Gate presents one authentication challenge per Authenticate call.
// Cancellation by the user yields (false, nil); an error is returned only
// for hardware or programming faults. Implementations must reject a second
// concurrent challenge with ErrChallengeInFlight rather than dropping it.
type Gate interface {
	Capability(ctx context.Context) Capability
	Authenticate(ctx context.Context, prompt string) (bool, error)
}

// Ready reports whether the gate can actually challenge the user.
func Ready(ctx context.Context, g Gate) bool {
	if g == nil {
		return false
	}
	cap := g.Capability(ctx)
	return cap.Available && cap.Enrolled
}

// Unavailable is a Gate for hosts without any authentication mechanism.
type Unavailable struct{}

var _ Gate = Unavailable{}

func (Unavailable) Capability(context.Context) Capability {
	return Capability{Kind: KindNone}
}

func (Unavailable) Authenticate(context.Context, string) (bool, error) {
	return false, ErrNotAvailable
}
