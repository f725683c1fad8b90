package vault

import (
	"errors"
	"fmt"
	"strings"

	"github.com/99designs/keyring"
)

// PromptFunc asks the user for a passphrase. Used by the encrypted-file
// backend only.
type PromptFunc func(prompt string) (string, error)

// AuthFunc requests a fresh authentication gesture from the user and
// reports whether it succeeded. Backends without a native read-time
// gesture route Options.RequireAuth through this.
type AuthFunc func(reason string) (bool, error)

// OSStoreConfig configures an OSStore.
type OSStoreConfig struct {
	// Namespace scopes every item. It becomes the credential-store
	// service name and the key prefix.
	Namespace string

	// Environment selects the backend. Obtain via Detect or Resolve.
	Environment Environment

	// FileDir and FilePassword apply to the encrypted-file backend.
	FileDir      string
	FilePassword PromptFunc

	// AuthFunc enforces Options.RequireAuth on backends that cannot
	// demand a gesture natively. Nil leaves enforcement to the OS.
	AuthFunc AuthFunc
}

// OSStore persists secrets in the host credential store via 99designs/keyring.
// The OS owns the at-rest encryption; this adapter owns namespacing and the
// not-found/denied distinction.
type OSStore struct {
	ring     keyring.Keyring
	prefix   string
	authFunc AuthFunc
}

var _ Store = (*OSStore)(nil)

// NewOSStore opens the credential store for the given environment.
// It fails with ErrUnavailable when the backend cannot be provisioned;
// callers must not fall back to plaintext storage.
func NewOSStore(cfg OSStoreConfig) (*OSStore, error) {
	if cfg.Namespace == "" {
		return nil, wrapStoreError("open", "", errors.New("namespace is required"))
	}
	backend, known := backendFor[cfg.Environment]
	if !known {
		return nil, fmt.Errorf("%w: environment %q", ErrUnavailable, cfg.Environment)
	}

	kcfg := keyring.Config{
		ServiceName:                    cfg.Namespace,
		AllowedBackends:                []keyring.BackendType{backend},
		KeychainTrustApplication:       true,
		KeychainAccessibleWhenUnlocked: true,
		LibSecretCollectionName:        cfg.Namespace,
		WinCredPrefix:                  cfg.Namespace,
		KeyCtlScope:                    "user",
		FileDir:                        cfg.FileDir,
	}
	if cfg.FilePassword != nil {
		kcfg.FilePasswordFunc = keyring.PromptFunc(cfg.FilePassword)
	}

	ring, err := keyring.Open(kcfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &OSStore{
		ring:     ring,
		prefix:   cfg.Namespace + ".",
		authFunc: cfg.AuthFunc,
	}, nil
}

// Set stores value under key. The item is marked non-synchronizable so the
// OS never replicates secret material off-device.
func (s *OSStore) Set(key string, value []byte, opts Options) error {
	item := keyring.Item{
		Key:                         s.prefix + key,
		Data:                        value,
		Label:                       s.prefix + key,
		KeychainNotSynchronizable:   true,
		KeychainNotTrustApplication: opts.RequireAuth,
	}
	return wrapStoreError("set", key, s.ring.Set(item))
}

// Get reads the value stored under key. Absence is reported as ok=false,
// not an error. With opts.RequireAuth the configured AuthFunc must approve
// the read first; a decline surfaces as ErrAuthDenied.
func (s *OSStore) Get(key string, opts Options) ([]byte, bool, error) {
	if opts.RequireAuth && s.authFunc != nil {
		ok, err := s.authFunc("read " + key)
		if err != nil {
			return nil, false, wrapStoreError("get", key, err)
		}
		if !ok {
			return nil, false, fmt.Errorf("%w: %s", ErrAuthDenied, key)
		}
	}

	item, err := s.ring.Get(s.prefix + key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapStoreError("get", key, err)
	}
	return item.Data, true, nil
}

// Delete removes the item stored under key. Deleting an absent key is not
// an error.
func (s *OSStore) Delete(key string) error {
	err := s.ring.Remove(s.prefix + key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return wrapStoreError("delete", key, err)
}

// Keys lists stored keys within the namespace, prefix stripped.
func (s *OSStore) Keys() ([]string, error) {
	all, err := s.ring.Keys()
	if err != nil {
		return nil, wrapStoreError("keys", "", err)
	}
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if strings.HasPrefix(k, s.prefix) {
			keys = append(keys, strings.TrimPrefix(k, s.prefix))
		}
	}
	return keys, nil
}

// Clear removes every item within the namespace. Items owned by other
// services are never touched.
func (s *OSStore) Clear() error {
	keys, err := s.Keys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Available reports whether the backend was provisioned.
func (s *OSStore) Available() bool {
	return s != nil && s.ring != nil
}
