package vault

import (
	"context"
	"errors"
	"fmt"
)

// ErrMigrationNotConfirmed indicates that the migration was not confirmed
// by the user.
var ErrMigrationNotConfirmed = errors.New("vault: migration requires user confirmation")

// MigrateConfig describes a store-to-store migration, for example moving
// items from the encrypted-file vault into a newly available OS credential
// store.
type MigrateConfig struct {
	Source Store
	Dest   Store

	// Confirmed must be true to proceed. Migration reads every secret in
	// the source namespace.
	Confirmed bool

	// DeleteSource removes each item from the source after the full copy
	// succeeded. A partial failure leaves the source untouched.
	DeleteSource bool

	// Options applies to every write on the destination.
	Options Options
}

// MigrateResult reports what a migration moved.
type MigrateResult struct {
	Keys []string
}

// Migrate copies every item from the source store to the destination.
// Secret buffers are wiped once written. The source is only drained after
// every item arrived, so an interrupted migration never loses material.
func Migrate(ctx context.Context, cfg MigrateConfig) (*MigrateResult, error) {
	if !cfg.Confirmed {
		return nil, ErrMigrationNotConfirmed
	}
	if cfg.Source == nil {
		return nil, errors.New("vault: source store is required")
	}
	if cfg.Dest == nil {
		return nil, errors.New("vault: destination store is required")
	}
	if !cfg.Dest.Available() {
		return nil, fmt.Errorf("%w: destination store", ErrUnavailable)
	}

	keys, err := cfg.Source.Keys()
	if err != nil {
		return nil, fmt.Errorf("list source keys: %w", err)
	}

	moved := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		value, ok, err := cfg.Source.Get(key, Options{})
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		if !ok {
			continue
		}

		err = cfg.Dest.Set(key, value, cfg.Options)
		zero(value)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", key, err)
		}
		moved = append(moved, key)
	}

	if cfg.DeleteSource {
		for _, key := range moved {
			if err := cfg.Source.Delete(key); err != nil {
				return nil, fmt.Errorf("drain %s: %w", key, err)
			}
		}
	}

	return &MigrateResult{Keys: moved}, nil
}

// zero wipes a secret buffer.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
