package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "veil",
	Short: "A CLI for funding and withdrawing from a Solana privacy pool",
	Long: `veil is a command-line tool for a Solana-based privacy pool. It signs with
a recovery phrase or a Ledger device, and can fund the pool starting from an
arbitrary source-chain asset via the NEAR Intents 1Click API.

Examples:
  veil balance
  veil fund 1.5
  veil fund 250 --source-asset USDC --source-chain eth
  veil withdraw 0.5 --to <solana-address>
  veil scan --max 5
  veil list-tokens --chain eth`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("backend", "", "Signing backend: mnemonic or ledger")
	rootCmd.PersistentFlags().Uint32("account-index", 0, "Derivation account index")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}
