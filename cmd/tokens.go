package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
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
	filterChain  string
	filterSymbol string
)

var tokensCmd = &cobra.Command{
	Use:     "list-tokens",
	Aliases: []string{"tokens", "ls"},
	Short:   "List supported funding source assets",
	Long: `List all assets the swap service accepts as cross-chain funding sources.

You can filter tokens by blockchain or symbol.

Examples:
  veil list-tokens
  veil list-tokens --chain solana
  veil list-tokens --symbol USDC`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterChain, "chain", "", "Filter by blockchain")
	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
}

func runListTokens(cmd *cobra.Command, args []string) {
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

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching supported tokens..."
		s.Start()
	}

	tokens, err := swapService.Tokens(context.Background())
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	// Apply filters
	filtered := tokens
	if filterChain != "" {
		var temp []swap.Token
		for _, token := range filtered {
			if strings.EqualFold(token.Blockchain, filterChain) {
				temp = append(temp, token)
			}
		}
		filtered = temp
	}

	if filterSymbol != "" {
		var temp []swap.Token
		for _, token := range filtered {
			if strings.Contains(strings.ToUpper(token.Symbol), strings.ToUpper(filterSymbol)) {
				temp = append(temp, token)
			}
		}
		filtered = temp
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(filtered, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayTokens(filtered)
	}
}

func displayTokens(tokens []swap.Token) {
	if len(tokens) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                            SUPPORTED TOKENS")
	fmt.Println(strings.Repeat("=", 90))

	// Group tokens by blockchain
	tokensByChain := make(map[string][]swap.Token)
	for _, token := range tokens {
		tokensByChain[token.Blockchain] = append(tokensByChain[token.Blockchain], token)
	}

	chains := make([]string, 0, len(tokensByChain))
	for chain := range tokensByChain {
		chains = append(chains, chain)
	}
	sort.Strings(chains)

	for _, chain := range chains {
		color.Cyan("\n%s", strings.ToUpper(chain))
		fmt.Println(strings.Repeat("-", 90))

		for _, token := range tokensByChain[chain] {
			address := token.ContractAddress
			if len(address) > 40 {
				address = address[:37] + "..."
			}

			fmt.Printf("  %-10s  %2d decimals  %s\n",
				color.YellowString(token.Symbol),
				token.Decimals,
				color.HiBlackString(address))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens across %d blockchains\n\n", len(tokens), len(chains))
}
