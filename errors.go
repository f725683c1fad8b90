package walletring

import (
	"errors"
	"fmt"
	"time"

	"github.com/Bidon15/walletring/ratelimit"
)

// Sentinel errors - Configuration
var (
	ErrInvalidWordCount = errors.New("walletring: mnemonic word count must be 12 or 24")
)

// Sentinel errors - Wallet state
var (
	ErrWalletNotFound      = errors.New("walletring: no wallet found")
	ErrWalletExists        = errors.New("walletring: wallet already exists")
	ErrMnemonicUnavailable = errors.New("walletring: wallet has no stored mnemonic")
)

// Sentinel errors - Input validation
var (
	ErrInvalidMnemonic   = errors.New("walletring: invalid mnemonic")
	ErrInvalidPrivateKey = errors.New("walletring: invalid private key")
)

// Sentinel errors - Collaborators
var (
	ErrVaultUnavailable     = errors.New("walletring: secure storage unavailable")
	ErrBiometricUnavailable = errors.New("walletring: authentication not available")
	ErrBiometricNotEnrolled = errors.New("walletring: no authentication method enrolled")
	ErrBiometricFailed      = errors.New("walletring: authentication failed")
)

// OpError wraps an error with wallet operation context.
type OpError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface for error chaining.
func (e *OpError) Unwrap() error {
	return e.Err
}

func wrapOpError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

// RateLimited reports whether err is a rate-limit rejection and, if so,
// how long the caller should wait before retrying.
func RateLimited(err error) (time.Duration, bool) {
	var le *ratelimit.LimitError
	if errors.As(err, &le) {
		return le.RetryAfter, true
	}
	return 0, false
}
