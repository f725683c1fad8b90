// Package config provides configuration loading for walletring hosts.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	walletring "github.com/Bidon15/walletring"
	"github.com/Bidon15/walletring/ratelimit"
	"github.com/Bidon15/walletring/vault"
)

// Config holds all configuration for a walletring host process.
type Config struct {
	Wallet  WalletConfig  `mapstructure:"wallet"`
	Storage StorageConfig `mapstructure:"storage"`
	Export  ExportConfig  `mapstructure:"export"`
	Log     LogConfig     `mapstructure:"log"`
}

// WalletConfig holds wallet lifecycle settings.
type WalletConfig struct {
	Namespace            string `mapstructure:"namespace"`
	MnemonicWords        int    `mapstructure:"mnemonic_words"`
	RequireAuthForExport bool   `mapstructure:"require_auth_for_export"`
}

// StorageConfig holds secure-storage resolution settings.
type StorageConfig struct {
	// Environment pins a specific backend instead of detecting one.
	// Requires ForceOptIn; see vault.DetectConfig.
	Environment            string `mapstructure:"environment"`
	ForceOptIn             bool   `mapstructure:"force_opt_in"`
	AllowInsecureFileVault bool   `mapstructure:"allow_insecure_file_vault"`
	FileDir                string `mapstructure:"file_dir"`
}

// ExportConfig holds the rate-limit policy for secret exports.
type ExportConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Window      time.Duration `mapstructure:"window"`
	Cooldown    time.Duration `mapstructure:"cooldown"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// Manager returns the wallet manager configuration this file describes.
func (c *Config) Manager() walletring.Config {
	return walletring.Config{
		Namespace:            c.Wallet.Namespace,
		MnemonicWords:        c.Wallet.MnemonicWords,
		RequireAuthForExport: c.Wallet.RequireAuthForExport,
		ExportPolicy: ratelimit.Policy{
			MaxAttempts: c.Export.MaxAttempts,
			Window:      c.Export.Window,
			Cooldown:    c.Export.Cooldown,
		},
	}
}

// Detect returns the storage resolution settings.
func (c *Config) Detect() vault.DetectConfig {
	return vault.DetectConfig{
		Force:                  vault.Environment(c.Storage.Environment),
		ForceOptIn:             c.Storage.ForceOptIn,
		AllowInsecureFileVault: c.Storage.AllowInsecureFileVault,
	}
}

// Load reads configuration from files and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/walletring")

	v.SetEnvPrefix("WALLETRING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Explicitly bind storage environment variables (nested struct issue with viper)
	v.BindEnv("storage.environment", "WALLETRING_STORAGE_ENVIRONMENT")
	v.BindEnv("storage.force_opt_in", "WALLETRING_STORAGE_FORCE_OPT_IN")
	v.BindEnv("storage.allow_insecure_file_vault", "WALLETRING_STORAGE_ALLOW_INSECURE_FILE_VAULT")
	v.BindEnv("storage.file_dir", "WALLETRING_STORAGE_FILE_DIR")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all settings.
func setDefaults(v *viper.Viper) {
	// Wallet defaults
	v.SetDefault("wallet.namespace", "walletring")
	v.SetDefault("wallet.mnemonic_words", 12)
	v.SetDefault("wallet.require_auth_for_export", false)

	// Storage defaults: detect the best backend, never fall back to the
	// plaintext-adjacent file vault without an explicit opt-in.
	v.SetDefault("storage.environment", "")
	v.SetDefault("storage.force_opt_in", false)
	v.SetDefault("storage.allow_insecure_file_vault", false)
	v.SetDefault("storage.file_dir", "")

	// Export rate-limit defaults
	v.SetDefault("export.max_attempts", 3)
	v.SetDefault("export.window", "1m")
	v.SetDefault("export.cooldown", "5m")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
