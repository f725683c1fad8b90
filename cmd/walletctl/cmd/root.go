// Package cmd implements the walletctl command tree.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/bgentry/speakeasy"
	"github.com/spf13/cobra"

	walletring "github.com/Bidon15/walletring"
	"github.com/Bidon15/walletring/biometric"
	"github.com/Bidon15/walletring/internal/config"
	"github.com/Bidon15/walletring/vault"
)

var jsonOut bool

var rootCmd = &cobra.Command{
	Use:   "walletctl",
	Short: "Manage a locally stored crypto wallet",
	Long: `walletctl manages a single wallet whose key material lives in the
operating system's secure credential store.

Examples:
  walletctl wallet create
  walletctl wallet show
  walletctl export mnemonic
  walletctl tokens add 0xA0b8...eB48 --symbol USDC --decimals 6`,
	SilenceUsage: true,
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON")
}

// newManager wires a Manager from the on-disk configuration: resolved
// storage environment, OS-backed vault and a terminal authentication gate.
func newManager(ctx context.Context) (*walletring.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	logger := slog.New(handler)

	env, err := vault.Resolve(cfg.Detect())
	if err != nil {
		return nil, err
	}

	gate := biometric.NewTerminalGate(os.Stderr)
	store, err := vault.NewOSStore(vault.OSStoreConfig{
		Namespace:   cfg.Wallet.Namespace,
		Environment: env,
		FileDir:     cfg.Storage.FileDir,
		FilePassword: func(prompt string) (string, error) {
			return speakeasy.Ask(prompt + ": ")
		},
		AuthFunc: func(reason string) (bool, error) {
			return gate.Authenticate(ctx, "Secure storage access: "+reason)
		},
	})
	if err != nil {
		return nil, err
	}

	return walletring.NewManager(cfg.Manager(), walletring.Deps{
		Store:       store,
		Gate:        gate,
		Logger:      logger,
		Environment: env,
	})
}

// confirm asks a yes/no question on stdin. Anything but y aborts.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", colorRed("✗"), err)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func printTableHeader(w *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func colorGreen(s string) string  { return "\033[32m" + s + "\033[0m" }
func colorYellow(s string) string { return "\033[33m" + s + "\033[0m" }
func colorRed(s string) string    { return "\033[31m" + s + "\033[0m" }
