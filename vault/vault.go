// Package vault provides the secure key-value storage abstraction used to
// persist wallet secret material. Encryption at rest is delegated to an
// OS-backed credential store; see OSStore for the production implementation
// and Detect for runtime backend selection.
package vault

import "errors"

// Sentinel errors - Storage
var (
	ErrUnavailable = errors.New("vault: no usable secure storage backend")
	ErrAuthDenied  = errors.New("vault: authentication declined")
	ErrUnsupported = errors.New("vault: operation not supported by backend")
)

// Sentinel errors - Environment
var (
	ErrForceWithoutOptIn = errors.New("vault: forced backend requires explicit opt-in")
	ErrInsecureFallback  = errors.New("vault: file backend requires explicit opt-in")
)

// Options is per-call storage policy. It is never persisted.
type Options struct {
	// RequireAuth asks the backend to demand a fresh authentication
	// gesture at read time, independent of any gate the caller already
	// passed. Backends without native support route through the store's
	// configured AuthFunc.
	RequireAuth bool

	// AccessibleWhenUnlocked restricts the item to device-unlocked state
	// on backends that can express it.
	AccessibleWhenUnlocked bool
}

// Store is a namespaced secret store. Get reports absence via ok=false
// rather than an error; ErrAuthDenied is a distinct failure from absence.
type Store interface {
	Set(key string, value []byte, opts Options) error
	Get(key string, opts Options) (value []byte, ok bool, err error)
	Delete(key string) error

	// Keys lists stored keys within the store's namespace.
	// May return ErrUnsupported.
	Keys() ([]string, error)

	// Clear removes every item within the store's namespace.
	// May return ErrUnsupported.
	Clear() error

	Available() bool
}

// StoreError wraps a backend failure with operation context.
type StoreError struct {
	Op  string
	Key string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Key == "" {
		return "vault " + e.Op + ": " + e.Err.Error()
	}
	return "vault " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

// Unwrap implements the errors.Unwrap interface for error chaining.
func (e *StoreError) Unwrap() error {
	return e.Err
}

func wrapStoreError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Key: key, Err: err}
}
