package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	walletring "github.com/Bidon15/walletring"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change wallet settings",
	Long: `Settings commands.

Examples:
  walletctl settings show
  walletctl settings set --require-auth=true`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings and export limits",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings",
	RunE:  runSettingsSet,
}

func init() {
	settingsSetCmd.Flags().Bool("require-auth", false, "require an authentication gesture for exports")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	m, err := newManager(ctx)
	if err != nil {
		printError(err)
		return err
	}

	s, err := m.ReadSettings(ctx)
	if err != nil {
		printError(err)
		return err
	}

	remaining := m.RemainingExportAttempts(walletring.OpExportMnemonic)
	cooldownEnd, cooling := m.ExportCooldownEnd(walletring.OpExportMnemonic)

	if jsonOut {
		out := map[string]interface{}{
			"require_auth_for_export":   s.RequireAuthForExport,
			"remaining_export_attempts": remaining,
		}
		if cooling {
			out["export_cooldown_end"] = cooldownEnd
		}
		return printJSON(out)
	}

	fmt.Printf("Require auth for export:   %t\n", s.RequireAuthForExport)
	fmt.Printf("Remaining export attempts: %d\n", remaining)
	if cooling {
		fmt.Printf("Export cooldown until:     %s\n", cooldownEnd.Format(time.RFC3339))
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if !cmd.Flags().Changed("require-auth") {
		return fmt.Errorf("nothing to change, pass --require-auth")
	}
	requireAuth, _ := cmd.Flags().GetBool("require-auth")

	m, err := newManager(ctx)
	if err != nil {
		printError(err)
		return err
	}

	if err := m.UpdateSettings(ctx, walletring.Settings{RequireAuthForExport: requireAuth}); err != nil {
		printError(err)
		return err
	}

	if jsonOut {
		return printJSON(map[string]bool{"require_auth_for_export": requireAuth})
	}

	fmt.Printf("%s Settings updated\n", colorGreen("✓"))
	return nil
}
