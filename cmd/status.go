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
	"github.com/spf13/cobra"

	"veil/config"
	"veil/pkg/logger"
	"veil/pkg/swap"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <deposit-address>",
	Short: "Check the status of a cross-chain funding swap",
	Long: `Check the swap leg of a cross-chain funding attempt by its deposit address.

Examples:
  veil status 0x1234...abcd
  veil status 0x1234...abcd --watch
  veil status 0x1234...abcd --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	depositAddress := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
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

	if watchStatus {
		watchSwapStatus(swapService, depositAddress, jsonOutput)
	} else {
		checkSwapStatus(swapService, depositAddress, jsonOutput)
	}
}

func checkSwapStatus(swapService *swap.OneClickService, depositAddress string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking swap status..."
		s.Start()
	}

	status, err := swapService.Status(context.Background(), depositAddress)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayStatus(status, depositAddress)
	}
}

func watchSwapStatus(swapService *swap.OneClickService, depositAddress string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching swap status (Deposit Address: %s)\n", color.CyanString(depositAddress))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	checkAndDisplayStatus(swapService, depositAddress)

	for range ticker.C {
		checkAndDisplayStatus(swapService, depositAddress)
	}
}

func checkAndDisplayStatus(swapService *swap.OneClickService, depositAddress string) {
	status, err := swapService.Status(context.Background(), depositAddress)
	if err != nil {
		color.Red("Error: %v", err)
		return
	}

	displayStatus(status, depositAddress)
}

func displayStatus(status *swap.ExecutionStatus, depositAddress string) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        SWAP STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Deposit Address: %s\n", color.CyanString(depositAddress))
	fmt.Printf("  Status:          %s\n", getColoredStatus(status.State))
	fmt.Printf("  Last Updated:    %s\n", status.UpdatedAt.Format("2006-01-02 15:04:05"))

	if status.DepositTx != "" {
		fmt.Printf("  Deposit Tx:      %s\n", color.HiBlackString(status.DepositTx))
	}
	if status.OutputTx != "" {
		fmt.Printf("  Output Tx:       %s\n", color.HiBlackString(status.OutputTx))
	}
	if status.AmountIn != "" {
		fmt.Printf("  Amount In:       %s\n", status.AmountIn)
	}
	if status.AmountOut != "" {
		fmt.Printf("  Amount Out:      %s\n", status.AmountOut)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func getColoredStatus(status string) string {
	status = strings.ToUpper(status)

	switch status {
	case "SUCCESS", "COMPLETED":
		return color.GreenString(status)
	case "PENDING_DEPOSIT", "PENDING", "PROCESSING":
		return color.YellowString(status)
	case "FAILED", "REFUNDED":
		return color.RedString(status)
	case "INCOMPLETE_DEPOSIT":
		return color.MagentaString(status)
	default:
		return status
	}
}
