package cmd

import (
	"context"
	"fmt"

	"github.com/bgentry/speakeasy"
	"github.com/spf13/cobra"

	"github.com/Bidon15/walletring/internal/config"
	"github.com/Bidon15/walletring/vault"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Inspect and migrate the secure storage backend",
	Long: `Secure storage commands.

Examples:
  walletctl vault status
  walletctl vault migrate --to keychain --drain`,
}

var vaultStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the resolved storage backend",
	RunE:  runVaultStatus,
}

var vaultMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Move stored items to another backend",
	Long: `Copy every stored item into another secure storage backend, for
example from the encrypted file vault into the OS keychain after it
became available.

The source is only drained with --drain, and only after every item
arrived at the destination.`,
	RunE: runVaultMigrate,
}

func init() {
	vaultMigrateCmd.Flags().String("to", "", "destination backend (required)")
	vaultMigrateCmd.Flags().Bool("drain", false, "remove items from the source after the copy")
	vaultMigrateCmd.Flags().BoolP("force", "f", false, "skip confirmation prompt")
	vaultMigrateCmd.MarkFlagRequired("to")

	vaultCmd.AddCommand(vaultStatusCmd)
	vaultCmd.AddCommand(vaultMigrateCmd)

	rootCmd.AddCommand(vaultCmd)
}

func runVaultStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		return err
	}

	env, err := vault.Resolve(cfg.Detect())
	if err != nil {
		printError(err)
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"environment": env,
			"supported":   env.Supported(),
		})
	}

	fmt.Printf("Storage backend: %s\n", env)
	return nil
}

func runVaultMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		return err
	}

	to, _ := cmd.Flags().GetString("to")
	drain, _ := cmd.Flags().GetBool("drain")
	force, _ := cmd.Flags().GetBool("force")

	// Pinning a destination is a forced selection; the file backend still
	// needs its explicit opt-in from the configuration.
	dest, err := vault.Detect(vault.DetectConfig{
		Force:                  vault.Environment(to),
		ForceOptIn:             true,
		AllowInsecureFileVault: cfg.Storage.AllowInsecureFileVault,
	})
	if err != nil {
		printError(err)
		return err
	}
	if !dest.Supported() {
		err := fmt.Errorf("unknown backend %q", to)
		printError(err)
		return err
	}

	srcEnv, err := vault.Resolve(cfg.Detect())
	if err != nil {
		printError(err)
		return err
	}
	if srcEnv == dest {
		fmt.Println("Source and destination backend are the same, nothing to do")
		return nil
	}

	confirmed := force
	if !confirmed {
		fmt.Printf("%s Migrating reads every stored secret from %s and writes it to %s.\n",
			colorYellow("⚠"), srcEnv, dest)
		confirmed = confirm("Continue?")
		if !confirmed {
			fmt.Println("Aborted")
			return nil
		}
	}

	src, err := openStore(cfg, srcEnv)
	if err != nil {
		printError(err)
		return err
	}
	dst, err := openStore(cfg, dest)
	if err != nil {
		printError(err)
		return err
	}

	res, err := vault.Migrate(ctx, vault.MigrateConfig{
		Source:       src,
		Dest:         dst,
		Confirmed:    confirmed,
		DeleteSource: drain,
	})
	if err != nil {
		printError(err)
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"moved":   res.Keys,
			"count":   len(res.Keys),
			"drained": drain,
		})
	}

	fmt.Printf("%s Moved %d item(s) to %s\n", colorGreen("✓"), len(res.Keys), dest)
	return nil
}

func openStore(cfg *config.Config, env vault.Environment) (vault.Store, error) {
	return vault.NewOSStore(vault.OSStoreConfig{
		Namespace:   cfg.Wallet.Namespace,
		Environment: env,
		FileDir:     cfg.Storage.FileDir,
		FilePassword: func(prompt string) (string, error) {
			return speakeasy.Ask(prompt + ": ")
		},
	})
}
