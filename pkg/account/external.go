package account

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// WalletContext is a caller-supplied, already-connected wallet (e.g. a
// browser extension bridged into this process). The external account holds
// no key material of its own and delegates all signing to the context.
type WalletContext interface {
	Connected() bool
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// MessageSigner is the optional off-chain message signing capability. Not
// every wallet adapter exposes it.
type MessageSigner interface {
	SignMessage(ctx context.Context, msg []byte) ([]byte, error)
}

// ExternalWalletAccount wraps a WalletContext. Every operation fails with
// ErrNotConnected once the wrapped context reports disconnected.
type ExternalWalletAccount struct {
	wallet     WalletContext
	client     ChainClient
	commitment rpc.CommitmentType
}

// NewExternalWalletAccount wraps an injected wallet context.
func NewExternalWalletAccount(wallet WalletContext, client ChainClient, commitment rpc.CommitmentType) (*ExternalWalletAccount, error) {
	if wallet == nil {
		return nil, fmt.Errorf("wallet context is required")
	}
	return &ExternalWalletAccount{
		wallet:     wallet,
		client:     client,
		commitment: commitment,
	}, nil
}

func (a *ExternalWalletAccount) ensureConnected() error {
	if !a.wallet.Connected() {
		return fmt.Errorf("%w: external wallet disconnected", ErrNotConnected)
	}
	return nil
}

// Address returns the wrapped wallet's public key.
func (a *ExternalWalletAccount) Address() (solana.PublicKey, error) {
	if err := a.ensureConnected(); err != nil {
		return solana.PublicKey{}, err
	}
	return a.wallet.PublicKey(), nil
}

// Balance returns the fee-adjusted spendable balance.
func (a *ExternalWalletAccount) Balance(ctx context.Context) (uint64, error) {
	pub, err := a.Address()
	if err != nil {
		return 0, err
	}
	return spendableBalance(ctx, a.client, pub, a.commitment)
}

// AssetToBaseUnits converts a decimal asset amount to lamports.
func (a *ExternalWalletAccount) AssetToBaseUnits(amount string) (uint64, error) {
	return AssetToBaseUnits(amount)
}

// SendDeposit transfers native SOL, delegating the signature to the wrapped
// wallet.
func (a *ExternalWalletAccount) SendDeposit(ctx context.Context, req DepositRequest) (string, error) {
	return sendDeposit(ctx, a, a.client, a.commitment, req)
}

// SignTransaction delegates to the wrapped wallet.
func (a *ExternalWalletAccount) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	if err := a.ensureConnected(); err != nil {
		return err
	}
	return a.wallet.SignTransaction(ctx, tx)
}

// SignMessage delegates to the wrapped wallet if it can sign off-chain
// messages, otherwise fails with ErrNotSupported.
func (a *ExternalWalletAccount) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	if err := a.ensureConnected(); err != nil {
		return nil, err
	}
	signer, ok := a.wallet.(MessageSigner)
	if !ok {
		return nil, fmt.Errorf("%w: wallet cannot sign off-chain messages", ErrNotSupported)
	}
	return signer.SignMessage(ctx, msg)
}
