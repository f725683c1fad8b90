// Package walletring manages the lifecycle of a wallet identity on a
// single-user device: key material generation, recovery and import,
// OS-backed secure persistence, abuse-resistant export, and a sanitized
// security audit trail.
package walletring

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Bidon15/walletring/ratelimit"
	"github.com/Bidon15/walletring/vault"
)

// DefaultNamespace scopes every persisted item in the vault.
const DefaultNamespace = "walletring"

// Logical storage keys. The vault adapter prefixes them with the
// namespace; nothing else is ever persisted.
const (
	StorageKeyWallet     = "wallet"
	StorageKeyMnemonic   = "mnemonic"
	StorageKeyPrivateKey = "privkey"
	StorageKeySettings   = "settings"
	StorageKeyTokens     = "tokens"
)

// Rate-limit operation keys for the export paths.
const (
	OpExportMnemonic   = "export.mnemonic"
	OpExportPrivateKey = "export.privkey"
)

// DerivationPath is the fixed HD path for mnemonic-derived wallets.
const DerivationPath = "m/44'/60'/0'/0/0"

// Source constants record how the active wallet came to exist.
const (
	SourceGenerated = "generated"
	SourceRecovered = "recovered"
	SourceImported  = "imported"
)

// Config holds Manager configuration.
type Config struct {
	// Namespace scopes persisted keys. Default: DefaultNamespace.
	Namespace string

	// ExportPolicy rate-limits secret export operations.
	// Default: ratelimit.DefaultExportPolicy.
	ExportPolicy ratelimit.Policy

	// RequireAuthForExport mandates an authentication gesture for every
	// export, regardless of per-call options or persisted settings.
	RequireAuthForExport bool

	// MnemonicWords is the generated phrase length, 12 or 24. Default: 12.
	MnemonicWords int
}

// WithDefaults returns Config with default values applied.
func (c Config) WithDefaults() Config {
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.ExportPolicy == (ratelimit.Policy{}) {
		c.ExportPolicy = ratelimit.DefaultExportPolicy()
	}
	if c.MnemonicWords == 0 {
		c.MnemonicWords = 12
	}
	return c
}

// Validate checks configuration fields.
func (c *Config) Validate() error {
	if c.MnemonicWords != 12 && c.MnemonicWords != 24 {
		return ErrInvalidWordCount
	}
	return nil
}

// WalletIdentity is the public, non-secret identity derived from the
// wallet's key material. Exactly one is active per device profile; it is
// immutable while active.
type WalletIdentity struct {
	Address   common.Address `json:"address"`
	PublicKey []byte         `json:"public_key"`
	CreatedAt time.Time      `json:"created_at"`
	Source    string         `json:"source"`
}

// CreateOptions configures wallet creation.
type CreateOptions struct {
	// Vault is the per-call storage policy for the persisted material.
	Vault vault.Options

	// Overwrite permits replacing an existing wallet. Without it,
	// creating over an active wallet fails with ErrWalletExists.
	Overwrite bool

	// MnemonicWords overrides Config.MnemonicWords for this call.
	MnemonicWords int
}

// ExportOptions configures a secret export.
type ExportOptions struct {
	// Vault is the per-call storage policy for the vault read.
	Vault vault.Options

	// RequireAuth demands an authentication gesture before the vault is
	// touched, in addition to any global or persisted mandate.
	RequireAuth bool
}

// Settings are the persisted user toggles, stored under
// StorageKeySettings.
type Settings struct {
	RequireAuthForExport bool `json:"require_auth_for_export"`
}

// Token is one entry of the user-curated token list, stored under
// StorageKeyTokens.
type Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Decimals uint8  `json:"decimals"`
}
