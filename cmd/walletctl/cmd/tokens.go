package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	walletring "github.com/Bidon15/walletring"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Manage the custom token list",
	Long: `Token list commands.

Examples:
  walletctl tokens list
  walletctl tokens add 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48 --symbol USDC --decimals 6
  walletctl tokens remove 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48`,
}

var tokensListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked tokens",
	RunE:  runTokensList,
}

var tokensAddCmd = &cobra.Command{
	Use:   "add <address>",
	Short: "Track a token contract",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokensAdd,
}

var tokensRemoveCmd = &cobra.Command{
	Use:   "remove <address>",
	Short: "Stop tracking a token contract",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokensRemove,
}

func init() {
	tokensAddCmd.Flags().String("symbol", "", "token symbol")
	tokensAddCmd.Flags().String("name", "", "token name")
	tokensAddCmd.Flags().Int("decimals", 18, "token decimals")

	tokensCmd.AddCommand(tokensListCmd)
	tokensCmd.AddCommand(tokensAddCmd)
	tokensCmd.AddCommand(tokensRemoveCmd)

	rootCmd.AddCommand(tokensCmd)
}

func runTokensList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	m, err := newManager(ctx)
	if err != nil {
		printError(err)
		return err
	}

	tokens, err := m.Tokens(ctx)
	if err != nil {
		printError(err)
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"tokens": tokens,
			"count":  len(tokens),
		})
	}

	if len(tokens) == 0 {
		fmt.Println("No tokens tracked")
		return nil
	}

	w := newTable()
	printTableHeader(w, "SYMBOL", "NAME", "DECIMALS", "ADDRESS")
	for _, t := range tokens {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.Symbol, t.Name, t.Decimals, t.Address)
	}
	return w.Flush()
}

func runTokensAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	m, err := newManager(ctx)
	if err != nil {
		printError(err)
		return err
	}

	symbol, _ := cmd.Flags().GetString("symbol")
	name, _ := cmd.Flags().GetString("name")
	decimals, _ := cmd.Flags().GetInt("decimals")

	token := walletring.Token{
		Address:  args[0],
		Symbol:   symbol,
		Name:     name,
		Decimals: uint8(decimals),
	}
	if err := m.AddToken(ctx, token); err != nil {
		printError(err)
		return err
	}

	if jsonOut {
		return printJSON(token)
	}

	fmt.Printf("%s Token added: %s\n", colorGreen("✓"), truncate(token.Address, 12))
	return nil
}

func runTokensRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	m, err := newManager(ctx)
	if err != nil {
		printError(err)
		return err
	}

	if err := m.RemoveToken(ctx, args[0]); err != nil {
		printError(err)
		return err
	}

	if jsonOut {
		return printJSON(map[string]string{"status": "removed", "address": args[0]})
	}

	fmt.Printf("%s Token removed: %s\n", colorGreen("✓"), truncate(args[0], 12))
	return nil
}
