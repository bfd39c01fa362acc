package cmd

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"

	"veil/config"
	"veil/pkg/account"
)

// buildAccount constructs the signing account selected by config and flags.
// The returned cleanup releases any device transport and is safe to defer.
func buildAccount(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (account.SigningAccount, func(), error) {
	backend := cfg.Backend
	if flag, _ := cmd.Flags().GetString("backend"); flag != "" {
		backend = flag
	}
	index := cfg.AccountIndex
	if cmd.Flags().Changed("account-index") {
		index, _ = cmd.Flags().GetUint32("account-index")
	}

	client := rpc.New(cfg.RPCUrl)
	commitment := account.CommitmentFromString(cfg.Commitment)
	noop := func() {}

	switch backend {
	case "mnemonic", "":
		if cfg.Mnemonic == "" {
			return nil, noop, fmt.Errorf("recovery phrase not configured. Set VEIL_MNEMONIC or add mnemonic to your .veil.yaml config file")
		}
		acct, err := account.New(account.Config{
			Kind:       account.KindMnemonic,
			Client:     client,
			Commitment: commitment,
			Index:      index,
			Mnemonic:   cfg.Mnemonic,
			Passphrase: cfg.Passphrase,
		})
		return acct, noop, err
	case "ledger", "hardware":
		acct, err := account.New(account.Config{
			Kind:       account.KindHardware,
			Client:     client,
			Commitment: commitment,
			Index:      index,
			Opener:     account.LedgerOpener{},
		})
		if err != nil {
			return nil, noop, err
		}
		cleanup, err := account.Connect(ctx, acct)
		if err != nil {
			return nil, cleanup, err
		}
		return acct, cleanup, nil
	default:
		return nil, noop, fmt.Errorf("unknown signing backend: %q", backend)
	}
}
