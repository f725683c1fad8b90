package biometric

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/bgentry/speakeasy"
)

const confirmWord = "yes"

// TerminalGate challenges the operator on the controlling terminal. The
// gesture is typing the confirmation word into a hidden prompt; anything
// else counts as cancellation. One challenge runs at a time.
type TerminalGate struct {
	mu  sync.Mutex
	out io.Writer

	// ask is swapped in tests. Defaults to speakeasy.Ask.
	ask func(prompt string) (string, error)
}

var _ Gate = (*TerminalGate)(nil)

// NewTerminalGate returns a gate writing its challenge text to out
// (os.Stderr when nil).
func NewTerminalGate(out io.Writer) *TerminalGate {
	if out == nil {
		out = os.Stderr
	}
	return &TerminalGate{out: out, ask: speakeasy.Ask}
}

// Capability reports a terminal gate as available and enrolled; the
// challenge itself fails with an error when no terminal is attached.
func (g *TerminalGate) Capability(context.Context) Capability {
	return Capability{Available: true, Enrolled: true, Kind: KindTerminal}
}

// Authenticate presents a single hidden prompt. Returns false when the
// operator types anything other than the confirmation word, an error when
// the terminal cannot be read.
func (g *TerminalGate) Authenticate(ctx context.Context, prompt string) (bool, error) {
	if !g.mu.TryLock() {
		return false, ErrChallengeInFlight
	}
	defer g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprintln(g.out, prompt)
	answer, err := g.ask(fmt.Sprintf("Type %q to approve: ", confirmWord))
	if err != nil {
		return false, fmt.Errorf("biometric: terminal challenge: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(answer), confirmWord), nil
}
