package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"

	"veil/config"
	"veil/pkg/account"
)

var scanMax uint32

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan Ledger derivation indices for funded accounts",
	Long: `Walk derivation indices on an attached Ledger device, showing the address
and spendable balance at each. Useful for recovering which index holds funds.

Examples:
  veil scan
  veil scan --max 10`,
	Run: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Uint32Var(&scanMax, "max", 5, "Number of derivation indices to scan")
}

func runScan(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	client := rpc.New(cfg.RPCUrl)
	commitment := account.CommitmentFromString(cfg.Commitment)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = fmt.Sprintf(" Scanning %d accounts on device...", scanMax)
		s.Start()
	}

	accounts, err := account.ScanAccounts(ctx, account.LedgerOpener{}, client, commitment, scanMax)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		out := make([]map[string]interface{}, 0, len(accounts))
		for _, a := range accounts {
			entry := map[string]interface{}{
				"index":   a.Index,
				"address": a.Address,
			}
			if a.Err != nil {
				entry["error"] = a.Err.Error()
			} else {
				entry["spendable_lamports"] = a.Balance
			}
			out = append(out, entry)
		}
		jsonData, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        DEVICE ACCOUNTS")
	fmt.Println(strings.Repeat("=", 70))

	for _, a := range accounts {
		balance := color.HiBlackString("balance unavailable")
		if a.Err == nil {
			balance = color.YellowString("%s SOL", account.BaseUnitsToAsset(a.Balance))
		}
		fmt.Printf("  #%-3d %s  %s\n", a.Index, color.CyanString(a.Address), balance)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}
