package walletring

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bidon15/walletring/ratelimit"
)

func TestOpError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OpError
		expected string
	}{
		{
			name:     "wraps operation and cause",
			err:      &OpError{Op: "create wallet", Err: ErrWalletExists},
			expected: "create wallet: walletring: wallet already exists",
		},
		{
			name:     "arbitrary cause",
			err:      &OpError{Op: "recover wallet", Err: errors.New("boom")},
			expected: "recover wallet: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestOpError_Unwrap(t *testing.T) {
	wrapped := wrapOpError("export", ErrBiometricFailed)
	require.ErrorIs(t, wrapped, ErrBiometricFailed)

	var oe *OpError
	require.ErrorAs(t, wrapped, &oe)
	assert.Equal(t, "export", oe.Op)
}

func TestWrapOpErrorNil(t *testing.T) {
	assert.NoError(t, wrapOpError("noop", nil))
}

func TestRateLimited(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantWait   time.Duration
		wantActive bool
	}{
		{
			name:       "direct limit error",
			err:        &ratelimit.LimitError{Key: "export.mnemonic", RetryAfter: 5 * time.Minute},
			wantWait:   5 * time.Minute,
			wantActive: true,
		},
		{
			name:       "wrapped limit error",
			err:        fmt.Errorf("export: %w", &ratelimit.LimitError{RetryAfter: time.Minute}),
			wantWait:   time.Minute,
			wantActive: true,
		},
		{
			name:       "unrelated error",
			err:        ErrWalletNotFound,
			wantActive: false,
		},
		{
			name:       "nil error",
			err:        nil,
			wantActive: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wait, active := RateLimited(tt.err)
			assert.Equal(t, tt.wantActive, active)
			assert.Equal(t, tt.wantWait, wait)
		})
	}
}
