package vault

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFrom(t *testing.T) {
	tests := []struct {
		name      string
		available []keyring.BackendType
		cfg       DetectConfig
		want      Environment
	}{
		{
			name:      "keychain wins over secret service",
			available: []keyring.BackendType{keyring.SecretServiceBackend, keyring.KeychainBackend},
			want:      EnvKeychain,
		},
		{
			name:      "wincred",
			available: []keyring.BackendType{keyring.WinCredBackend},
			want:      EnvWinCred,
		},
		{
			name:      "secret service",
			available: []keyring.BackendType{keyring.SecretServiceBackend, keyring.FileBackend},
			want:      EnvSecretService,
		},
		{
			name:      "file backend skipped without opt-in",
			available: []keyring.BackendType{keyring.FileBackend},
			want:      EnvUnsupported,
		},
		{
			name:      "file backend with opt-in",
			available: []keyring.BackendType{keyring.FileBackend},
			cfg:       DetectConfig{AllowInsecureFileVault: true},
			want:      EnvEncryptedFile,
		},
		{
			name:      "nothing available",
			available: nil,
			want:      EnvUnsupported,
		},
		{
			name:      "pass backend alone is not usable",
			available: []keyring.BackendType{keyring.PassBackend},
			want:      EnvUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectFrom(tt.available, tt.cfg))
		})
	}
}

func TestDetectForce(t *testing.T) {
	t.Run("force without opt-in rejected", func(t *testing.T) {
		_, err := Detect(DetectConfig{Force: EnvKeychain})
		require.ErrorIs(t, err, ErrForceWithoutOptIn)
	})

	t.Run("force with opt-in honored", func(t *testing.T) {
		env, err := Detect(DetectConfig{Force: EnvSecretService, ForceOptIn: true})
		require.NoError(t, err)
		assert.Equal(t, EnvSecretService, env)
	})

	t.Run("forced file backend still needs fallback opt-in", func(t *testing.T) {
		_, err := Detect(DetectConfig{Force: EnvEncryptedFile, ForceOptIn: true})
		require.ErrorIs(t, err, ErrInsecureFallback)

		env, err := Detect(DetectConfig{
			Force:                  EnvEncryptedFile,
			ForceOptIn:             true,
			AllowInsecureFileVault: true,
		})
		require.NoError(t, err)
		assert.Equal(t, EnvEncryptedFile, env)
	})

	t.Run("forced unknown environment resolves unsupported", func(t *testing.T) {
		env, err := Detect(DetectConfig{Force: Environment("tpm"), ForceOptIn: true})
		require.NoError(t, err)
		assert.Equal(t, EnvUnsupported, env)
		assert.False(t, env.Supported())
	})
}

func TestEnvironmentSupported(t *testing.T) {
	assert.True(t, EnvKeychain.Supported())
	assert.True(t, EnvEncryptedFile.Supported())
	assert.False(t, EnvUnsupported.Supported())
	assert.False(t, Environment("").Supported())
}
