package walletring

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Bidon15/walletring/vault"
)

// ReadSettings returns the persisted settings, or defaults when nothing
// is stored yet.
func (m *Manager) ReadSettings(ctx context.Context) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readSettings()
}

// UpdateSettings persists the user toggles.
func (m *Manager) UpdateSettings(ctx context.Context, s Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	blob, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return m.store.Set(StorageKeySettings, blob, vault.Options{AccessibleWhenUnlocked: true})
}

func (m *Manager) readSettings() (Settings, error) {
	blob, ok, err := m.store.Get(StorageKeySettings, vault.Options{})
	if err != nil {
		return Settings{}, err
	}
	if !ok {
		return Settings{}, nil
	}
	var s Settings
	if err := json.Unmarshal(blob, &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}
