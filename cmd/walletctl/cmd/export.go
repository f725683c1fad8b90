package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	walletring "github.com/Bidon15/walletring"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export secret wallet material",
	Long: `Export the backup phrase or the raw private key.

Exports are rate limited and may require an authentication gesture.

Examples:
  walletctl export mnemonic
  walletctl export key --auth`,
}

var exportMnemonicCmd = &cobra.Command{
	Use:   "mnemonic",
	Short: "Export the backup phrase",
	RunE:  runExportMnemonic,
}

var exportKeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Export the hex-encoded private key",
	RunE:  runExportKey,
}

func init() {
	for _, c := range []*cobra.Command{exportMnemonicCmd, exportKeyCmd} {
		c.Flags().Bool("auth", false, "require an authentication gesture even if not mandated")
		c.Flags().BoolP("force", "f", false, "skip confirmation prompt")
	}

	exportCmd.AddCommand(exportMnemonicCmd)
	exportCmd.AddCommand(exportKeyCmd)

	rootCmd.AddCommand(exportCmd)
}

func runExportMnemonic(cmd *cobra.Command, args []string) error {
	return runExport(cmd, "backup phrase", func(ctx context.Context, m *walletring.Manager, opts walletring.ExportOptions) (string, error) {
		return m.ExportMnemonic(ctx, opts)
	})
}

func runExportKey(cmd *cobra.Command, args []string) error {
	return runExport(cmd, "private key", func(ctx context.Context, m *walletring.Manager, opts walletring.ExportOptions) (string, error) {
		return m.ExportPrivateKey(ctx, opts)
	})
}

func runExport(cmd *cobra.Command, what string, export func(context.Context, *walletring.Manager, walletring.ExportOptions) (string, error)) error {
	ctx := context.Background()

	force, _ := cmd.Flags().GetBool("force")
	auth, _ := cmd.Flags().GetBool("auth")

	if !force {
		fmt.Printf("%s The %s grants full control of the wallet to anyone who sees it.\n", colorYellow("⚠"), what)
		if !confirm("Show it?") {
			fmt.Println("Aborted")
			return nil
		}
	}

	m, err := newManager(ctx)
	if err != nil {
		printError(err)
		return err
	}

	secret, err := export(ctx, m, walletring.ExportOptions{RequireAuth: auth})
	if err != nil {
		if retryAfter, limited := walletring.RateLimited(err); limited {
			msg := fmt.Sprintf("Too many export attempts. Retry in %s.", retryAfter.Round(time.Second))
			if jsonOut {
				return printJSON(map[string]string{"error": msg})
			}
			fmt.Printf("%s %s\n", colorYellow("⚠"), msg)
			return err
		}
		if errors.Is(err, walletring.ErrMnemonicUnavailable) {
			printError(fmt.Errorf("this wallet was imported from a raw key and has no backup phrase"))
			return err
		}
		printError(err)
		return err
	}

	if jsonOut {
		return printJSON(map[string]string{"secret": secret})
	}

	fmt.Printf("\n  %s\n\n", secret)
	fmt.Printf("%s Clear your terminal history after use.\n", colorYellow("⚠"))
	return nil
}
