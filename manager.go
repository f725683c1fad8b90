package walletring

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lightningnetwork/lnd/clock"

	"github.com/Bidon15/walletring/audit"
	"github.com/Bidon15/walletring/biometric"
	"github.com/Bidon15/walletring/ratelimit"
	"github.com/Bidon15/walletring/vault"
)

// Deps are the collaborators a Manager orchestrates. Store is required;
// the rest default to sensible process-wide instances.
type Deps struct {
	Store       vault.Store
	Gate        biometric.Gate
	Limiter     *ratelimit.Limiter
	Audit       *audit.Logger
	Logger      *slog.Logger
	Clock       clock.Clock
	Environment vault.Environment
}

// Manager owns the wallet lifecycle: NoWallet -> HasWallet via create,
// recover, import or load; back to NoWallet via delete. Every sensitive
// operation passes rate limiting, optional authentication gating and
// audit logging before touching the vault. Operations on the same wallet
// are serialized; the manager never retains secret material across calls.
type Manager struct {
	cfg     Config
	store   vault.Store
	gate    biometric.Gate
	limiter *ratelimit.Limiter
	audit   *audit.Logger
	log     *slog.Logger
	clock   clock.Clock
	env     vault.Environment

	mu sync.Mutex

	onAccount func(*Account)
	onClear   func()
}

// NewManager validates cfg and wires the manager. It fails with
// ErrVaultUnavailable when the store is absent or the resolved environment
// is unsupported; there is no insecure fallback path.
func NewManager(cfg Config, deps Deps) (*Manager, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if deps.Store == nil || !deps.Store.Available() {
		return nil, ErrVaultUnavailable
	}
	if deps.Environment != "" && !deps.Environment.Supported() {
		return nil, fmt.Errorf("%w: environment %q", ErrVaultUnavailable, deps.Environment)
	}
	if deps.Gate == nil {
		deps.Gate = biometric.Unavailable{}
	}
	if deps.Clock == nil {
		deps.Clock = clock.NewDefaultClock()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.New(deps.Clock)
	}
	if deps.Audit == nil {
		deps.Audit = audit.NewLogger(audit.Config{Clock: deps.Clock, Logger: deps.Logger})
	}

	return &Manager{
		cfg:     cfg,
		store:   deps.Store,
		gate:    deps.Gate,
		limiter: deps.Limiter,
		audit:   deps.Audit,
		log:     deps.Logger.With(slog.String("component", "walletring")),
		clock:   deps.Clock,
		env:     deps.Environment,
	}, nil
}

// Open is the convenience constructor for hosts without bespoke wiring:
// it resolves the storage environment, opens the OS-backed vault and
// attaches a terminal authentication gate.
func Open(cfg Config, detect vault.DetectConfig) (*Manager, error) {
	cfg = cfg.WithDefaults()

	env, err := vault.Resolve(detect)
	if err != nil {
		return nil, err
	}
	if !env.Supported() {
		return nil, ErrVaultUnavailable
	}

	gate := biometric.NewTerminalGate(os.Stderr)
	store, err := vault.NewOSStore(vault.OSStoreConfig{
		Namespace:   cfg.Namespace,
		Environment: env,
		AuthFunc: func(reason string) (bool, error) {
			return gate.Authenticate(context.Background(), "Secure storage access: "+reason)
		},
	})
	if err != nil {
		return nil, err
	}

	return NewManager(cfg, Deps{
		Store:       store,
		Gate:        gate,
		Environment: env,
	})
}

// Environment reports the resolved secure-storage backend.
func (m *Manager) Environment() vault.Environment {
	return m.env
}

// SetAccountHooks wires the host callbacks invoked when the active
// account changes. set fires after create/recover/import/load, clear
// after delete. Either may be nil. Hooks run after the operation's lock
// is released and may call back into the Manager.
func (m *Manager) SetAccountHooks(set func(*Account), clear func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAccount = set
	m.onClear = clear
}

// HasWallet reports whether a wallet identity is persisted.
func (m *Manager) HasWallet(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok, err := m.readIdentity()
	return ok, err
}

// Create generates new key material, persists it and returns the identity
// together with the backup mnemonic. The mnemonic crosses this boundary
// exactly once; the manager does not retain it.
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (*WalletIdentity, string, error) {
	const op = "create wallet"

	var notify func()
	defer runNotify(&notify)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	words := opts.MnemonicWords
	if words == 0 {
		words = m.cfg.MnemonicWords
	}

	if _, exists, err := m.readIdentity(); err != nil {
		return nil, "", m.failOp(op, err)
	} else if exists && !opts.Overwrite {
		return nil, "", m.failOp(op, ErrWalletExists)
	}

	mnemonic, err := newMnemonic(words)
	if err != nil {
		return nil, "", m.failOp(op, err)
	}

	key, err := deriveKey(mnemonic)
	if err != nil {
		return nil, "", m.failOp(op, err)
	}
	defer zeroKey(key)

	id := identityFrom(key, SourceGenerated, m.clock.Now())
	if err := m.persistMaterial(id, mnemonic, key, opts.Vault); err != nil {
		return nil, "", m.failOp(op, err)
	}

	m.audit.Log(audit.EventWalletCreated,
		map[string]any{"source": SourceGenerated, "words": words},
		id.Address.Hex())
	m.log.Info("wallet created", slog.String("address_hint", audit.MaskAddress(id.Address.Hex())))
	notify = m.accountNotifier(id)

	return id, mnemonic, nil
}

// Recover validates a backup mnemonic, derives the wallet it controls and
// persists it. The mnemonic is not echoed back.
func (m *Manager) Recover(ctx context.Context, mnemonic string, opts vault.Options) (*WalletIdentity, error) {
	const op = "recover wallet"

	var notify func()
	defer runNotify(&notify)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized, err := validateMnemonic(mnemonic)
	if err != nil {
		return nil, m.failOp(op, err)
	}

	key, err := deriveKey(normalized)
	if err != nil {
		return nil, m.failOp(op, err)
	}
	defer zeroKey(key)

	id := identityFrom(key, SourceRecovered, m.clock.Now())
	if err := m.persistMaterial(id, normalized, key, opts); err != nil {
		return nil, m.failOp(op, err)
	}

	m.audit.Log(audit.EventWalletRecovered,
		map[string]any{"source": SourceRecovered},
		id.Address.Hex())
	notify = m.accountNotifier(id)

	return id, nil
}

// ImportPrivateKey persists a wallet from a raw hex-encoded private key.
// An imported wallet has no mnemonic; ExportMnemonic on it fails with
// ErrMnemonicUnavailable.
func (m *Manager) ImportPrivateKey(ctx context.Context, raw string, opts vault.Options) (*WalletIdentity, error) {
	const op = "import private key"

	var notify func()
	defer runNotify(&notify)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := parsePrivateKey(raw)
	if err != nil {
		return nil, m.failOp(op, err)
	}
	defer zeroKey(key)

	// A previously stored mnemonic belongs to different material.
	if err := m.store.Delete(StorageKeyMnemonic); err != nil {
		return nil, m.failOp(op, err)
	}

	id := identityFrom(key, SourceImported, m.clock.Now())
	if err := m.persistMaterial(id, "", key, opts); err != nil {
		return nil, m.failOp(op, err)
	}

	m.audit.Log(audit.EventWalletImported,
		map[string]any{"source": SourceImported},
		id.Address.Hex())
	notify = m.accountNotifier(id)

	return id, nil
}

// Load reconstructs the persisted wallet identity without exposing any
// secret material. A fresh vault yields ok=false and no error.
func (m *Manager) Load(ctx context.Context) (*WalletIdentity, bool, error) {
	const op = "load wallet"

	var notify func()
	defer runNotify(&notify)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	id, ok, err := m.readIdentity()
	if err != nil {
		return nil, false, m.failOp(op, err)
	}
	if !ok {
		return nil, false, nil
	}

	m.audit.Log(audit.EventWalletLoaded, nil, id.Address.Hex())
	notify = m.accountNotifier(id)
	return id, true, nil
}

// Delete irreversibly removes all persisted material. Idempotent:
// deleting an empty wallet state succeeds and changes nothing.
func (m *Manager) Delete(ctx context.Context) error {
	const op = "delete wallet"

	var notify func()
	defer runNotify(&notify)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	id, had, err := m.readIdentity()
	if err != nil {
		return m.failOp(op, err)
	}

	for _, key := range []string{
		StorageKeyWallet,
		StorageKeyMnemonic,
		StorageKeyPrivateKey,
		StorageKeySettings,
		StorageKeyTokens,
	} {
		if err := m.store.Delete(key); err != nil {
			return m.failOp(op, err)
		}
	}

	if had {
		m.audit.Log(audit.EventWalletDeleted, nil, id.Address.Hex())
		notify = m.onClear
	}
	return nil
}

// ExportMnemonic releases the backup phrase after rate limiting, audit
// and an authentication challenge when one is mandated.
func (m *Manager) ExportMnemonic(ctx context.Context, opts ExportOptions) (string, error) {
	return m.export(ctx, OpExportMnemonic, StorageKeyMnemonic, opts, ErrMnemonicUnavailable)
}

// ExportPrivateKey releases the hex-encoded private key under the same
// gating as ExportMnemonic.
func (m *Manager) ExportPrivateKey(ctx context.Context, opts ExportOptions) (string, error) {
	return m.export(ctx, OpExportPrivateKey, StorageKeyPrivateKey, opts, ErrWalletNotFound)
}

// export runs the fixed gating order for secret release: rate limiter,
// attempt audit, authentication challenge, vault read, result audit.
// Secrets are returned whole or not at all.
func (m *Manager) export(ctx context.Context, op, storageKey string, opts ExportOptions, missing error) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := m.limiter.Check(op, m.cfg.ExportPolicy); err != nil {
		var le *ratelimit.LimitError
		if errors.As(err, &le) {
			m.audit.RateLimitTriggered(op, le.RetryAfter)
		}
		return "", err
	}

	id, hasWallet, err := m.readIdentity()
	addrHint := ""
	if hasWallet {
		addrHint = id.Address.Hex()
	}
	m.audit.ExportAttempt(op, addrHint)
	if err != nil {
		return "", m.failExport(op, err)
	}
	if !hasWallet {
		return "", m.failExport(op, ErrWalletNotFound)
	}

	if m.authRequired(opts) {
		if err := m.challenge(ctx, op); err != nil {
			return "", m.failExport(op, err)
		}
	}

	value, ok, err := m.store.Get(storageKey, opts.Vault)
	if err != nil {
		return "", m.failExport(op, err)
	}
	if !ok {
		return "", m.failExport(op, missing)
	}

	m.audit.Log(audit.EventExportSuccess, map[string]any{"operation": op}, id.Address.Hex())
	return string(value), nil
}

// authRequired merges the per-call request, the global mandate and the
// persisted settings toggle.
func (m *Manager) authRequired(opts ExportOptions) bool {
	if opts.RequireAuth || opts.Vault.RequireAuth || m.cfg.RequireAuthForExport {
		return true
	}
	settings, err := m.readSettings()
	if err != nil {
		// Unreadable settings never weaken the policy.
		m.log.Warn("settings unreadable, requiring authentication", slog.Any("error", err))
		return true
	}
	return settings.RequireAuthForExport
}

// challenge runs one authentication gesture for op.
func (m *Manager) challenge(ctx context.Context, op string) error {
	cap := m.gate.Capability(ctx)
	if !cap.Available {
		return ErrBiometricUnavailable
	}
	if !cap.Enrolled {
		return ErrBiometricNotEnrolled
	}

	ok, err := m.gate.Authenticate(ctx, "Approve "+op)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBiometricFailed, err)
	}
	if !ok {
		m.audit.Log(audit.EventAuthFailed, map[string]any{"operation": op}, "")
		return ErrBiometricFailed
	}
	return nil
}

// Account returns the signing capability for the active wallet. This is
// the sole bridge to the out-of-scope transaction layer.
func (m *Manager) Account(ctx context.Context) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, ok, err := m.readIdentity()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWalletNotFound
	}
	return &Account{identity: *id, sign: m.signDigest}, nil
}

// signDigest acquires the private key for exactly one signature and wipes
// it afterwards.
func (m *Manager) signDigest(ctx context.Context, digest []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blob, ok, err := m.store.Get(StorageKeyPrivateKey, vault.Options{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWalletNotFound
	}
	defer zeroBytes(blob)

	key, err := parsePrivateKey(string(blob))
	if err != nil {
		return nil, err
	}
	defer zeroKey(key)

	return crypto.Sign(digest, key)
}

// RemainingExportAttempts is a UI projection of the limiter state for an
// export operation key.
func (m *Manager) RemainingExportAttempts(op string) int {
	return m.limiter.RemainingAttempts(op, m.cfg.ExportPolicy)
}

// ExportCooldownEnd reports the active cooldown deadline for an export
// operation key, if any.
func (m *Manager) ExportCooldownEnd(op string) (time.Time, bool) {
	return m.limiter.CooldownEnd(op)
}

// persistMaterial writes the identity blob and the secret material. The
// wallet blob is public; the secrets honor the caller's storage policy.
// Secret buffers are wiped once handed to the vault.
func (m *Manager) persistMaterial(id *WalletIdentity, mnemonic string, key *ecdsa.PrivateKey, opts vault.Options) error {
	blob, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := m.store.Set(StorageKeyWallet, blob, vault.Options{AccessibleWhenUnlocked: true}); err != nil {
		return err
	}

	secretOpts := opts
	secretOpts.AccessibleWhenUnlocked = true

	if mnemonic != "" {
		mb := []byte(mnemonic)
		err := m.store.Set(StorageKeyMnemonic, mb, secretOpts)
		zeroBytes(mb)
		if err != nil {
			return err
		}
	}

	kb := encodePrivateKey(key)
	err = m.store.Set(StorageKeyPrivateKey, kb, secretOpts)
	zeroBytes(kb)
	return err
}

// readIdentity loads the persisted wallet blob, if any.
func (m *Manager) readIdentity() (*WalletIdentity, bool, error) {
	blob, ok, err := m.store.Get(StorageKeyWallet, vault.Options{})
	if err != nil || !ok {
		return nil, false, err
	}
	var id WalletIdentity
	if err := json.Unmarshal(blob, &id); err != nil {
		return nil, false, fmt.Errorf("decode identity: %w", err)
	}
	return &id, true, nil
}

// failOp audits a failed lifecycle operation before propagating it.
func (m *Manager) failOp(op string, err error) error {
	m.audit.Log(audit.EventOperationFailed,
		map[string]any{"operation": op, "reason": err.Error()}, "")
	return wrapOpError(op, err)
}

// failExport audits a failed export before propagating it.
func (m *Manager) failExport(op string, err error) error {
	m.audit.Log(audit.EventExportFailure,
		map[string]any{"operation": op, "reason": err.Error()}, "")
	return wrapOpError(op, err)
}

// accountNotifier captures the set hook while the lock is held and
// returns the deferred invocation, or nil when no hook is wired.
func (m *Manager) accountNotifier(id *WalletIdentity) func() {
	hook := m.onAccount
	if hook == nil {
		return nil
	}
	acct := &Account{identity: *id, sign: m.signDigest}
	return func() { hook(acct) }
}

// runNotify invokes a pending hook. Deferred before the lock is taken so
// the hook runs after the lock is released.
func runNotify(notify *func()) {
	if *notify != nil {
		(*notify)()
	}
}
