package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"veil/config"
	"veil/pkg/account"
	"veil/pkg/funding"
	"veil/pkg/logger"
	"veil/pkg/pool"
	"veil/pkg/swap"
)

var (
	sourceAsset string
	sourceChain string
	fundYes     bool
)

var fundCmd = &cobra.Command{
	Use:   "fund <amount>",
	Short: "Fund the privacy pool",
	Long: `Fund the privacy pool with native SOL, or cross-chain from another asset.

Without --source-asset the amount is SOL already held by the signing account
and is deposited to the pool directly. With --source-asset the amount is in
the source asset; it is swapped to SOL via the NEAR Intents 1Click API and
then deposited.

Examples:
  veil fund 1.5
  veil fund 250 --source-asset USDC --source-chain eth
  veil fund 0.01 --source-asset BTC --source-chain btc --yes`,
	Args: cobra.ExactArgs(1),
	Run:  runFund,
}

func init() {
	rootCmd.AddCommand(fundCmd)

	fundCmd.Flags().StringVar(&sourceAsset, "source-asset", "", "Source asset symbol for cross-chain funding (optional)")
	fundCmd.Flags().StringVar(&sourceChain, "source-chain", "", "Source blockchain (optional)")
	fundCmd.Flags().BoolVarP(&fundYes, "yes", "y", false, "Skip confirmation prompt")
}

func runFund(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	amount := args[0]
	verbose, _ := cmd.Flags().GetBool("verbose")
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

	poolClient := pool.NewRPCClient(cfg.PoolURL, cfg.PoolAsset)

	if sourceAsset == "" || strings.EqualFold(sourceAsset, cfg.PoolAsset) {
		runSameChainFund(ctx, acct, poolClient, amount, jsonOutput)
		return
	}

	runCrossChainFund(ctx, cmd, cfg, acct, poolClient, amount, verbose, jsonOutput)
}

// runSameChainFund deposits SOL the account already holds straight into the
// pool, no swap service involved.
func runSameChainFund(ctx context.Context, acct account.SigningAccount, poolClient pool.Pool, amount string, jsonOutput bool) {
	lamports, err := acct.AssetToBaseUnits(amount)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Depositing to pool..."
		s.Start()
	}

	txHash, err := poolClient.DepositDirect(ctx, pool.DepositParams{
		Amount: fmt.Sprintf("%d", lamports),
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
			"status":  "completed",
			"tx_hash": txHash,
		}, "", "  ")
		fmt.Println(string(jsonData))
		return
	}
	color.Green("\n✓ Pool deposit completed!")
	fmt.Printf("  Transaction: %s\n\n", color.CyanString(txHash))
}

func runCrossChainFund(ctx context.Context, cmd *cobra.Command, cfg *config.Config, acct account.SigningAccount, poolClient pool.Pool, amount string, verbose, jsonOutput bool) {
	if err := cfg.RequireJWT(); err != nil {
		printError(err)
		os.Exit(1)
	}

	log, err := logger.New(verbose)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer log.Sync()

	swapService := swap.NewOneClickService(cfg.JWTToken, log)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Resolving source asset..."
		s.Start()
	}
	token, err := swapService.FindToken(ctx, sourceAsset, sourceChain)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	baseAmount, err := swap.BaseUnits(amount, token.Decimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	sender, err := acct.Address()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if !jsonOutput {
		fmt.Printf("\n  Funding:  %s %s (%s on %s)\n", amount, strings.ToUpper(sourceAsset), token.AssetID, token.Blockchain)
		fmt.Printf("  Sender:   %s\n", sender)
		fmt.Printf("  Pool:     %s\n", cfg.PoolAsset)
	}
	if !fundYes && !cfg.AutoConfirm && !jsonOutput {
		if !confirm("Proceed with cross-chain funding?") {
			fmt.Println("\nFunding cancelled.")
			os.Exit(0)
		}
	}

	orchestrator := funding.NewOrchestrator(poolClient, swapService, log, funding.Options{
		SlippageBps: cfg.SlippageBps,
		Referral:    cfg.Referral,
	})

	params := funding.Params{
		SourceAsset:   token.AssetID,
		Amount:        baseAmount,
		SenderAddress: sender.String(),
		SendDeposit: func(ctx context.Context, address, amt string) (string, error) {
			return acct.SendDeposit(ctx, account.DepositRequest{Address: address, Amount: amt})
		},
		OnStatus: func(st funding.Status) {
			printFundingStatus(st, jsonOutput)
		},
	}

	txHash, err := orchestrator.FundCrossChain(ctx, params)
	if err != nil {
		if !jsonOutput {
			color.Red("\nCross-chain funding failed: %v\n", err)
		}
		os.Exit(1)
	}
	if !jsonOutput {
		color.Green("\n✓ Pool funded!")
		fmt.Printf("  Pool deposit tx: %s\n\n", color.CyanString(txHash))
	}
}

func printFundingStatus(st funding.Status, jsonOutput bool) {
	if jsonOutput {
		out := map[string]interface{}{"status": string(st.Kind)}
		switch st.Kind {
		case funding.StatusGettingQuote:
			out["source_asset"] = st.SourceAsset
			out["destination_asset"] = st.DestinationAsset
		case funding.StatusAwaitingDeposit:
			out["deposit_address"] = st.DepositAddress
		case funding.StatusDepositSent, funding.StatusCompleted:
			out["tx_hash"] = st.TxHash
		case funding.StatusSwapping:
			out["swap_state"] = st.SwapState
		case funding.StatusFailed:
			out["error"] = st.Err.Error()
		}
		jsonData, _ := json.Marshal(out)
		fmt.Println(string(jsonData))
		return
	}

	switch st.Kind {
	case funding.StatusCompleted:
		color.Green("  → %s", st)
	case funding.StatusFailed:
		color.Red("  → %s", st)
	default:
		fmt.Printf("  → %s\n", st)
	}
}

func confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s (y/N): ", prompt)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
