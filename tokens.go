package walletring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Bidon15/walletring/vault"
)

// ErrTokenExists is returned when adding a token whose address is already
// on the list.
var ErrTokenExists = errors.New("walletring: token already on the list")

// Tokens returns the user-curated token list.
func (m *Manager) Tokens(ctx context.Context) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readTokens()
}

// AddToken appends a token, deduplicated by address.
func (m *Manager) AddToken(ctx context.Context, t Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tokens, err := m.readTokens()
	if err != nil {
		return err
	}
	for _, existing := range tokens {
		if strings.EqualFold(existing.Address, t.Address) {
			return ErrTokenExists
		}
	}
	return m.writeTokens(append(tokens, t))
}

// RemoveToken drops the token at addr. Removing an unknown address is not
// an error.
func (m *Manager) RemoveToken(ctx context.Context, addr string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tokens, err := m.readTokens()
	if err != nil {
		return err
	}
	kept := tokens[:0]
	for _, t := range tokens {
		if !strings.EqualFold(t.Address, addr) {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tokens) {
		return nil
	}
	return m.writeTokens(kept)
}

func (m *Manager) readTokens() ([]Token, error) {
	blob, ok, err := m.store.Get(StorageKeyTokens, vault.Options{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var tokens []Token
	if err := json.Unmarshal(blob, &tokens); err != nil {
		return nil, fmt.Errorf("decode token list: %w", err)
	}
	return tokens, nil
}

func (m *Manager) writeTokens(tokens []Token) error {
	blob, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode token list: %w", err)
	}
	return m.store.Set(StorageKeyTokens, blob, vault.Options{AccessibleWhenUnlocked: true})
}
