package audit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeDetails(t *testing.T) {
	tests := []struct {
		name    string
		details map[string]any
		want    map[string]string
	}{
		{
			name:    "sensitive key names redacted regardless of value",
			details: map[string]any{"privateKey": "hello", "count": 3},
			want:    map[string]string{"privateKey": RedactedMarker, "count": "3"},
		},
		{
			name:    "sensitive term anywhere in the key",
			details: map[string]any{"walletMnemonicBackup": true, "apiSecretToken": "x"},
			want: map[string]string{
				"walletMnemonicBackup": RedactedMarker,
				"apiSecretToken":       RedactedMarker,
			},
		},
		{
			name:    "key term is case-insensitive",
			details: map[string]any{"SEED_PHRASE": "whatever", "PassWord": 1},
			want:    map[string]string{"SEED_PHRASE": RedactedMarker, "PassWord": RedactedMarker},
		},
		{
			name: "64-hex value redacted with and without prefix",
			details: map[string]any{
				"raw":      strings.Repeat("ab", 32),
				"prefixed": "0x" + strings.Repeat("AB", 32),
			},
			want: map[string]string{"raw": RedactedKeyMarker, "prefixed": RedactedKeyMarker},
		},
		{
			name:    "64-hex embedded in a longer message",
			details: map[string]any{"message": "leaked 0x" + strings.Repeat("0f", 32) + " in logs"},
			want:    map[string]string{"message": RedactedKeyMarker},
		},
		{
			name:    "twelve words redacted as mnemonic",
			details: map[string]any{"phrase": strings.TrimSpace(strings.Repeat("abandon ", 12))},
			want:    map[string]string{"phrase": RedactedMnemonicMarker},
		},
		{
			name:    "twenty four words redacted as mnemonic",
			details: map[string]any{"phrase": strings.TrimSpace(strings.Repeat("legal ", 24))},
			want:    map[string]string{"phrase": RedactedMnemonicMarker},
		},
		{
			name:    "eleven words pass through",
			details: map[string]any{"note": strings.TrimSpace(strings.Repeat("word ", 11))},
			want:    map[string]string{"note": strings.TrimSpace(strings.Repeat("word ", 11))},
		},
		{
			name:    "benign values survive",
			details: map[string]any{"operation": "export_mnemonic", "attempts": 2},
			want:    map[string]string{"operation": "export_mnemonic", "attempts": "2"},
		},
		{
			name:    "short hex is not a key",
			details: map[string]any{"hash_prefix": "deadbeef"},
			want:    map[string]string{"hash_prefix": "deadbeef"},
		},
		{
			name:    "empty map",
			details: nil,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeDetails(tt.details))
		})
	}
}

func TestSanitizeNeverLeaksSecretShapes(t *testing.T) {
	secrets := map[string]any{
		"a": strings.Repeat("7c", 32),
		"b": "0x" + strings.Repeat("7c", 32),
		"c": strings.TrimSpace(strings.Repeat("abandon ", 12)),
		"d": strings.TrimSpace(strings.Repeat("abandon ", 24)),
	}
	out := sanitizeDetails(secrets)
	for k, v := range out {
		assert.NotContains(t, v, "7c7c", "key %s", k)
		assert.NotContains(t, v, "abandon abandon", "key %s", k)
	}
}

func TestMaskAddress(t *testing.T) {
	assert.Equal(t, "", MaskAddress(""))
	assert.Equal(t, RedactedMarker, MaskAddress("0xabc"))
	assert.Equal(t,
		"0x9858...da94",
		MaskAddress("0x9858EfFD232B4033E47d90003D41EC34Ecaeda94"))
}
