package walletring

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Account is the signing capability handed to external collaborators
// (the RPC/transaction layer). It carries no private material; signing
// loads the key from the vault for the duration of the call only.
type Account struct {
	identity WalletIdentity
	sign     func(ctx context.Context, digest []byte) ([]byte, error)
}

// Address returns the wallet's 20-byte address.
func (a *Account) Address() common.Address {
	return a.identity.Address
}

// PublicKey returns the uncompressed secp256k1 public key.
func (a *Account) PublicKey() []byte {
	cp := make([]byte, len(a.identity.PublicKey))
	copy(cp, a.identity.PublicKey)
	return cp
}

// Identity returns a copy of the public wallet identity.
func (a *Account) Identity() WalletIdentity {
	return a.identity
}

// SignDigest signs a 32-byte digest, producing a 65-byte [R || S || V]
// signature. The private key is read from the vault, used, and wiped
// before the call returns.
func (a *Account) SignDigest(ctx context.Context, digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("walletring: digest must be 32 bytes, got %d", len(digest))
	}
	return a.sign(ctx, digest)
}
