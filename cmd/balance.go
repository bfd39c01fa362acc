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

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show spendable and pooled balances",
	Long: `Show the signing account's spendable balance (after the fee reserve) and
the private balance held in the pool.

Examples:
  veil balance
  veil balance --backend ledger --account-index 2`,
	Run: runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	acct, cleanup, err := buildAccount(ctx, cmd, cfg)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer cleanup()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching balances..."
		s.Start()
	}

	address, err := acct.Address()
	if err != nil {
		if !jsonOutput {
			s.Stop()
		}
		printError(err)
		os.Exit(1)
	}

	spendable, err := acct.Balance(ctx)
	if err != nil {
		if !jsonOutput {
			s.Stop()
		}
		printError(err)
		os.Exit(1)
	}

	// Pool balance is best-effort; the daemon may not be running.
	poolClient := pool.NewRPCClient(cfg.PoolURL, cfg.PoolAsset)
	pooled, poolErr := poolClient.PrivateBalance(ctx)

	if !jsonOutput {
		s.Stop()
	}

	if jsonOutput {
		out := map[string]interface{}{
			"address":            address.String(),
			"spendable_lamports": spendable,
			"spendable":          account.BaseUnitsToAsset(spendable),
		}
		if poolErr == nil {
			out["pool_lamports"] = pooled
			out["pool"] = account.BaseUnitsToAsset(pooled)
		} else {
			out["pool_error"] = poolErr.Error()
		}
		jsonData, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Printf("\n  Address:     %s\n", color.CyanString(address.String()))
	fmt.Printf("  Spendable:   %s SOL\n", color.YellowString(account.BaseUnitsToAsset(spendable)))
	if poolErr == nil {
		fmt.Printf("  In pool:     %s SOL\n\n", color.YellowString(account.BaseUnitsToAsset(pooled)))
	} else {
		fmt.Printf("  In pool:     %s\n\n", color.HiBlackString("unavailable: "+poolErr.Error()))
	}
}
