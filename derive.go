package walletring

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// derivationSteps is DerivationPath as child indexes.
var derivationSteps = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 60,
	hdkeychain.HardenedKeyStart,
	0,
	0,
}

// newMnemonic generates a fresh phrase of the given length from CSPRNG
// entropy. Trusted primitive per the module's non-goals; the wordlist and
// checksum come from the bip39 library.
func newMnemonic(words int) (string, error) {
	var bits int
	switch words {
	case 12:
		bits = 128
	case 24:
		bits = 256
	default:
		return "", ErrInvalidWordCount
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	defer zeroBytes(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("encode mnemonic: %w", err)
	}
	return mnemonic, nil
}

// validateMnemonic normalizes and checksums a phrase.
func validateMnemonic(mnemonic string) (string, error) {
	normalized := strings.Join(strings.Fields(strings.ToLower(mnemonic)), " ")
	words := len(strings.Fields(normalized))
	if words != 12 && words != 24 {
		return "", fmt.Errorf("%w: %d words", ErrInvalidMnemonic, words)
	}
	if !bip39.IsMnemonicValid(normalized) {
		return "", ErrInvalidMnemonic
	}
	return normalized, nil
}

// deriveKey derives the wallet key at DerivationPath from a validated
// mnemonic. Every intermediate secret buffer is wiped before returning;
// the caller owns wiping the returned key.
func deriveKey(mnemonic string) (*ecdsa.PrivateKey, error) {
	seed := bip39.NewSeed(mnemonic, "")
	defer zeroBytes(seed)

	node, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("derive master key: %w", err)
	}
	defer node.Zero()

	for _, step := range derivationSteps {
		child, err := node.Derive(step)
		if err != nil {
			return nil, fmt.Errorf("derive %s: %w", DerivationPath, err)
		}
		node.Zero()
		node = child
	}

	priv, err := node.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("extract private key: %w", err)
	}
	return priv.ToECDSA(), nil
}

// parsePrivateKey decodes a hex-encoded secp256k1 private key, with or
// without a 0x prefix.
func parsePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if len(cleaned) != 64 {
		return nil, fmt.Errorf("%w: want 64 hex characters, got %d", ErrInvalidPrivateKey, len(cleaned))
	}
	key, err := crypto.HexToECDSA(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return key, nil
}

// encodePrivateKey renders a key as the canonical 0x-prefixed hex form
// used for vault persistence and export.
func encodePrivateKey(key *ecdsa.PrivateKey) []byte {
	raw := crypto.FromECDSA(key)
	defer zeroBytes(raw)
	return []byte("0x" + hex.EncodeToString(raw))
}

// identityFrom derives the public identity for a private key.
func identityFrom(key *ecdsa.PrivateKey, source string, now time.Time) *WalletIdentity {
	return &WalletIdentity{
		Address:   crypto.PubkeyToAddress(key.PublicKey),
		PublicKey: crypto.FromECDSAPub(&key.PublicKey),
		CreatedAt: now.UTC(),
		Source:    source,
	}
}

// zeroBytes overwrites b in place.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// zeroKey wipes the scalar of a private key.
func zeroKey(key *ecdsa.PrivateKey) {
	if key == nil || key.D == nil {
		return
	}
	bits := key.D.Bits()
	for i := range bits {
		bits[i] = 0
	}
}
