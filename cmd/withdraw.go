package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"veil/config"
	"veil/pkg/account"
	"veil/pkg/pool"
)

var withdrawTo string

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <amount>",
	Short: "Withdraw from the privacy pool",
	Long: `Withdraw pooled funds to a destination address.

Examples:
  veil withdraw 0.5 --to 7dHbWX...
  veil withdraw 1 --to 7dHbWX... --json`,
	Args: cobra.ExactArgs(1),
	Run:  runWithdraw,
}

func init() {
	rootCmd.AddCommand(withdrawCmd)

	withdrawCmd.Flags().StringVar(&withdrawTo, "to", "", "Destination address (REQUIRED)")
	withdrawCmd.MarkFlagRequired("to")
}

func runWithdraw(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	lamports, err := account.AssetToBaseUnits(args[0])
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	poolClient := pool.NewRPCClient(cfg.PoolURL, cfg.PoolAsset)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Withdrawing from pool..."
		s.Start()
	}

	txHash, err := poolClient.Withdraw(ctx, pool.WithdrawParams{
		Destination: withdrawTo,
		Amount:      fmt.Sprintf("%d", lamports),
	})
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(map[string]interface{}{
			"status":      "completed",
			"destination": withdrawTo,
			"tx_hash":     txHash,
		}, "", "  ")
		fmt.Println(string(jsonData))
		return
	}
	color.Green("\n✓ Withdrawal completed!")
	fmt.Printf("  Destination: %s\n", withdrawTo)
	fmt.Printf("  Transaction: %s\n\n", color.CyanString(txHash))
}
