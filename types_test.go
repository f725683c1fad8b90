package walletring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bidon15/walletring/ratelimit"
)

func TestConfig_WithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		input    Config
		expected Config
	}{
		{
			name:  "empty config gets all defaults",
			input: Config{},
			expected: Config{
				Namespace:     DefaultNamespace,
				ExportPolicy:  ratelimit.DefaultExportPolicy(),
				MnemonicWords: 12,
			},
		},
		{
			name: "explicit values are kept",
			input: Config{
				Namespace:     "custom",
				MnemonicWords: 24,
				ExportPolicy:  ratelimit.Policy{MaxAttempts: 1, Window: time.Second, Cooldown: time.Minute},
			},
			expected: Config{
				Namespace:     "custom",
				MnemonicWords: 24,
				ExportPolicy:  ratelimit.Policy{MaxAttempts: 1, Window: time.Second, Cooldown: time.Minute},
			},
		},
		{
			name:  "partial config fills only the gaps",
			input: Config{Namespace: "custom"},
			expected: Config{
				Namespace:     "custom",
				ExportPolicy:  ratelimit.DefaultExportPolicy(),
				MnemonicWords: 12,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.WithDefaults())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "12 words", cfg: Config{MnemonicWords: 12}},
		{name: "24 words", cfg: Config{MnemonicWords: 24}},
		{name: "zero words", cfg: Config{}, wantErr: ErrInvalidWordCount},
		{name: "15 words", cfg: Config{MnemonicWords: 15}, wantErr: ErrInvalidWordCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
