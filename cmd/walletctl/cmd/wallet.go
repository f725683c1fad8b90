package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/bgentry/speakeasy"
	"github.com/spf13/cobra"

	walletring "github.com/Bidon15/walletring"
	"github.com/Bidon15/walletring/audit"
	"github.com/Bidon15/walletring/vault"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the wallet lifecycle",
	Long: `Wallet lifecycle commands.

Examples:
  walletctl wallet create
  walletctl wallet recover
  walletctl wallet import
  walletctl wallet show
  walletctl wallet delete`,
}

var walletCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate a new wallet",
	Long: `Generate fresh key material and store it in the secure vault.

The backup mnemonic is printed exactly once. Write it down; it cannot
be shown again without an export.`,
	RunE: runWalletCreate,
}

var walletRecoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover a wallet from its mnemonic",
	Long:  `Restore a wallet from a 12 or 24 word backup phrase entered at a hidden prompt.`,
	RunE:  runWalletRecover,
}

var walletImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a wallet from a raw private key",
	Long: `Import a wallet from a hex-encoded private key entered at a hidden prompt.

Imported wallets carry no mnemonic; only the private key can be exported.`,
	RunE: runWalletImport,
}

var walletShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active wallet",
	RunE:  runWalletShow,
}

var walletDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the wallet and all stored material",
	Long: `Irreversibly remove the wallet, its key material, settings and token list.

WARNING: Without the backup mnemonic the funds controlled by this wallet
are unrecoverable after deletion.`,
	RunE: runWalletDelete,
}

func init() {
	walletCreateCmd.Flags().Int("words", 0, "mnemonic length, 12 or 24 (default from config)")
	walletCreateCmd.Flags().BoolP("force", "f", false, "replace an existing wallet")
	walletDeleteCmd.Flags().BoolP("force", "f", false, "skip confirmation prompt")

	walletCmd.AddCommand(walletCreateCmd)
	walletCmd.AddCommand(walletRecoverCmd)
	walletCmd.AddCommand(walletImportCmd)
	walletCmd.AddCommand(walletShowCmd)
	walletCmd.AddCommand(walletDeleteCmd)

	rootCmd.AddCommand(walletCmd)
}

func runWalletCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	m, err := newManager(ctx)
	if err != nil {
		printError(err)
		return err
	}

	words, _ := cmd.Flags().GetInt("words")
	force, _ := cmd.Flags().GetBool("force")

	if force {
		if has, err := m.HasWallet(ctx); err == nil && has {
			fmt.Printf("%s Replacing the existing wallet destroys its keys.\n", colorYellow("⚠"))
			if !confirm("Continue?") {
				fmt.Println("Aborted")
				return nil
			}
		}
	}

	id, mnemonic, err := m.Create(ctx, walletring.CreateOptions{
		Overwrite:     force,
		MnemonicWords: words,
	})
	if err != nil {
		printError(err)
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"address":  id.Address.Hex(),
			"source":   id.Source,
			"mnemonic": mnemonic,
		})
	}

	fmt.Printf("%s Wallet created!\n\n", colorGreen("✓"))
	fmt.Printf("  Address: %s\n", id.Address.Hex())
	fmt.Printf("\n  Backup phrase (shown once):\n\n    %s\n", mnemonic)
	fmt.Printf("\n%s Write the phrase down and store it offline.\n", colorYellow("⚠"))
	return nil
}

func runWalletRecover(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	m, err := newManager(ctx)
	if err != nil {
		printError(err)
		return err
	}

	mnemonic, err := speakeasy.Ask("Backup phrase: ")
	if err != nil {
		return fmt.Errorf("failed to read phrase: %w", err)
	}

	id, err := m.Recover(ctx, mnemonic, vault.Options{})
	if err != nil {
		printError(err)
		return err
	}

	if jsonOut {
		return printJSON(map[string]string{"address": id.Address.Hex(), "source": id.Source})
	}

	fmt.Printf("%s Wallet recovered: %s\n", colorGreen("✓"), id.Address.Hex())
	return nil
}

func runWalletImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	m, err := newManager(ctx)
	if err != nil {
		printError(err)
		return err
	}

	raw, err := speakeasy.Ask("Private key (hex): ")
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}

	id, err := m.ImportPrivateKey(ctx, strings.TrimSpace(raw), vault.Options{})
	if err != nil {
		printError(err)
		return err
	}

	if jsonOut {
		return printJSON(map[string]string{"address": id.Address.Hex(), "source": id.Source})
	}

	fmt.Printf("%s Wallet imported: %s\n", colorGreen("✓"), id.Address.Hex())
	return nil
}

func runWalletShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	m, err := newManager(ctx)
	if err != nil {
		printError(err)
		return err
	}

	id, ok, err := m.Load(ctx)
	if err != nil {
		printError(err)
		return err
	}
	if !ok {
		if jsonOut {
			return printJSON(map[string]bool{"has_wallet": false})
		}
		fmt.Println("No wallet stored")
		return nil
	}

	if jsonOut {
		return printJSON(id)
	}

	fmt.Printf("Address:     %s\n", id.Address.Hex())
	fmt.Printf("Source:      %s\n", id.Source)
	fmt.Printf("Created:     %s\n", id.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Storage:     %s\n", m.Environment())
	fmt.Printf("Address hint: %s\n", audit.MaskAddress(id.Address.Hex()))
	return nil
}

func runWalletDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		fmt.Printf("%s Deleting the wallet destroys its keys.\n", colorYellow("⚠"))
		fmt.Println("Without the backup phrase the funds are unrecoverable.")
		if !confirm("Delete?") {
			fmt.Println("Aborted")
			return nil
		}
	}

	m, err := newManager(ctx)
	if err != nil {
		printError(err)
		return err
	}

	if err := m.Delete(ctx); err != nil {
		printError(err)
		return err
	}

	if jsonOut {
		return printJSON(map[string]string{"status": "deleted"})
	}

	fmt.Printf("%s Wallet deleted\n", colorGreen("✓"))
	return nil
}
