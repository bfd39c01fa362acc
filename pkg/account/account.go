// Package account provides the signing-account abstraction used by the
// funding and withdrawal flows. Three backends implement the same contract:
// recovery-phrase derived keys, a Ledger hardware device, and an
// externally-connected wallet context.
package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
)

// FeeReserve is held back from every reported balance so that a transfer of
// the reported amount cannot fail purely on fee starvation.
const FeeReserve = uint64(3_000_000)

// confirmPollInterval is how often a submitted transaction is re-checked.
const confirmPollInterval = 2 * time.Second

// DepositRequest describes a single native-asset transfer.
type DepositRequest struct {
	Address string // base58 recipient
	Amount  string // base units, decimal string
}

// SigningAccount is the uniform contract over all signing backends. Callers
// never branch on the concrete variant; operations attempted before the
// backend's readiness condition holds fail with ErrNotReady or ErrNotConnected.
type SigningAccount interface {
	// Address returns the account's base58-derivable public key.
	Address() (solana.PublicKey, error)

	// Balance returns the spendable balance in lamports: the on-chain
	// balance minus FeeReserve, clamped at zero.
	Balance(ctx context.Context) (uint64, error)

	// AssetToBaseUnits converts a decimal asset amount to base units.
	AssetToBaseUnits(amount string) (uint64, error)

	// SendDeposit builds, signs, submits and awaits confirmation of a
	// single native transfer. One attempt, no internal retry.
	SendDeposit(ctx context.Context, req DepositRequest) (string, error)

	// SignTransaction signs tx in place.
	SignTransaction(ctx context.Context, tx *solana.Transaction) error

	// SignMessage signs an arbitrary off-chain message.
	SignMessage(ctx context.Context, msg []byte) ([]byte, error)
}

// ChainClient is the subset of the Solana RPC client the account package
// uses. *rpc.Client satisfies it; tests substitute a stub.
type ChainClient interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetRecentBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetRecentBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// CommitmentFromString maps a config value to an RPC commitment level,
// defaulting to confirmed.
func CommitmentFromString(s string) rpc.CommitmentType {
	switch strings.ToLower(s) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "confirmed":
		return rpc.CommitmentConfirmed
	case "processed":
		return rpc.CommitmentProcessed
	default:
		return rpc.CommitmentConfirmed
	}
}

// spendableBalance queries the on-chain balance and applies the fee reserve.
func spendableBalance(ctx context.Context, client ChainClient, pub solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	res, err := client.GetBalance(ctx, pub, commitment)
	if err != nil {
		return 0, &RPCError{Op: "getBalance", Err: err}
	}
	if res.Value <= FeeReserve {
		return 0, nil
	}
	return res.Value - FeeReserve, nil
}

// sendDeposit implements the shared transfer flow for all variants: validate
// the request before any network call, check the fee-adjusted balance, then
// build, sign via the variant, submit and await confirmation.
func sendDeposit(ctx context.Context, acct SigningAccount, client ChainClient, commitment rpc.CommitmentType, req DepositRequest) (string, error) {
	lamports, err := parseBaseUnits(req.Amount)
	if err != nil {
		return "", err
	}
	recipient, err := solana.PublicKeyFromBase58(req.Address)
	if err != nil {
		return "", fmt.Errorf("invalid recipient address: %w", err)
	}

	from, err := acct.Address()
	if err != nil {
		return "", err
	}

	available, err := spendableBalance(ctx, client, from, commitment)
	if err != nil {
		return "", err
	}
	if lamports > available {
		return "", &InsufficientBalanceError{Required: lamports, Available: available}
	}

	recent, err := client.GetRecentBlockhash(ctx, commitment)
	if err != nil {
		return "", &RPCError{Op: "getRecentBlockhash", Err: err}
	}

	instruction := system.NewTransferInstruction(lamports, from, recipient).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		recent.Value.Blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := acct.SignTransaction(ctx, tx); err != nil {
		return "", err
	}

	sig, err := client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: commitment,
	})
	if err != nil {
		return "", &RPCError{Op: "sendTransaction", Err: err}
	}

	if err := awaitConfirmation(ctx, client, sig, commitment); err != nil {
		return "", err
	}
	return sig.String(), nil
}

// awaitConfirmation polls signature status until the requested commitment is
// reached or the context is done.
func awaitConfirmation(ctx context.Context, client ChainClient, sig solana.Signature, commitment rpc.CommitmentType) error {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		res, err := client.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return &RPCError{Op: "getSignatureStatuses", Err: err}
		}
		if len(res.Value) > 0 && res.Value[0] != nil {
			st := res.Value[0]
			if st.Err != nil {
				return fmt.Errorf("transaction %s failed on chain: %v", sig, st.Err)
			}
			if commitmentReached(st.ConfirmationStatus, commitment) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func commitmentReached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	rank := func(s string) int {
		switch strings.ToLower(s) {
		case "processed":
			return 1
		case "confirmed":
			return 2
		case "finalized":
			return 3
		default:
			return 0
		}
	}
	return rank(string(status)) >= rank(string(want))
}
