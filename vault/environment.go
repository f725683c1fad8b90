package vault

import (
	"sync"

	"github.com/99designs/keyring"
)

// Environment identifies which secure storage backend the process runs
// against. Resolved once per process and cached.
type Environment string

const (
	EnvKeychain      Environment = "keychain"
	EnvWinCred       Environment = "wincred"
	EnvSecretService Environment = "secret-service"
	EnvKeyctl        Environment = "keyctl"
	EnvEncryptedFile Environment = "file"
	EnvUnsupported   Environment = "unsupported"
)

// Supported reports whether the environment can back a wallet.
func (e Environment) Supported() bool {
	return e != EnvUnsupported && e != ""
}

// backendFor maps an environment to its keyring backend type.
var backendFor = map[Environment]keyring.BackendType{
	EnvKeychain:      keyring.KeychainBackend,
	EnvWinCred:       keyring.WinCredBackend,
	EnvSecretService: keyring.SecretServiceBackend,
	EnvKeyctl:        keyring.KeyCtlBackend,
	EnvEncryptedFile: keyring.FileBackend,
}

// detectionOrder is the fixed probe priority. Hardware-backed stores win;
// the encrypted file backend is considered only with explicit opt-in.
var detectionOrder = []Environment{
	EnvKeychain,
	EnvWinCred,
	EnvSecretService,
	EnvKeyctl,
	EnvEncryptedFile,
}

// DetectConfig controls environment resolution.
type DetectConfig struct {
	// Force pins the environment instead of probing. Testing aid only:
	// ignored unless ForceOptIn is also set.
	Force      Environment
	ForceOptIn bool

	// AllowInsecureFileVault permits the encrypted-file backend when no
	// OS credential store is usable. Off by default.
	AllowInsecureFileVault bool
}

// Detect probes the host for a usable backend in fixed priority order.
// It returns EnvUnsupported when nothing qualifies; callers must treat
// that as fatal rather than degrading to plaintext storage.
func Detect(cfg DetectConfig) (Environment, error) {
	if cfg.Force != "" {
		if !cfg.ForceOptIn {
			return EnvUnsupported, ErrForceWithoutOptIn
		}
		if cfg.Force == EnvEncryptedFile && !cfg.AllowInsecureFileVault {
			return EnvUnsupported, ErrInsecureFallback
		}
		if _, known := backendFor[cfg.Force]; !known {
			return EnvUnsupported, nil
		}
		return cfg.Force, nil
	}
	return detectFrom(keyring.AvailableBackends(), cfg), nil
}

// detectFrom is the pure core of Detect, split out for tests.
func detectFrom(available []keyring.BackendType, cfg DetectConfig) Environment {
	usable := make(map[keyring.BackendType]bool, len(available))
	for _, b := range available {
		usable[b] = true
	}
	for _, env := range detectionOrder {
		if env == EnvEncryptedFile && !cfg.AllowInsecureFileVault {
			continue
		}
		if usable[backendFor[env]] {
			return env
		}
	}
	return EnvUnsupported
}

var (
	resolveOnce sync.Once
	resolvedEnv Environment
	resolvedErr error
)

// Resolve detects the environment once per process and caches the result.
// Subsequent calls return the cached value regardless of cfg.
func Resolve(cfg DetectConfig) (Environment, error) {
	resolveOnce.Do(func() {
		resolvedEnv, resolvedErr = Detect(cfg)
	})
	return resolvedEnv, resolvedErr
}
