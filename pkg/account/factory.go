package account

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
)

// Kind selects a signing backend.
type Kind string

const (
	KindMnemonic Kind = "mnemonic"
	KindHardware Kind = "hardware"
	KindExternal Kind = "external"
)

// Config carries the backend-specific inputs for constructing an account.
// Exactly the fields for the selected Kind need to be set.
type Config struct {
	Kind Kind

	// Shared
	Client     ChainClient
	Commitment rpc.CommitmentType
	Index      uint32

	// KindMnemonic
	Mnemonic   string
	Passphrase string

	// KindHardware
	Opener TransportOpener

	// KindExternal
	Wallet WalletContext
}

// New constructs a SigningAccount for the configured backend. Call sites
// program against the interface and never inspect the concrete variant.
func New(cfg Config) (SigningAccount, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("chain client is required")
	}
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentConfirmed
	}

	switch cfg.Kind {
	case KindMnemonic:
		if cfg.Mnemonic == "" {
			return nil, fmt.Errorf("recovery phrase not configured")
		}
		return NewMnemonicAccount(cfg.Mnemonic, cfg.Passphrase, cfg.Index, cfg.Client, cfg.Commitment)
	case KindHardware:
		if cfg.Opener == nil {
			return nil, fmt.Errorf("device transport not configured")
		}
		return NewHardwareAccount(cfg.Opener, cfg.Index, cfg.Client, cfg.Commitment), nil
	case KindExternal:
		return NewExternalWalletAccount(cfg.Wallet, cfg.Client, cfg.Commitment)
	default:
		return nil, fmt.Errorf("unknown account backend: %q", cfg.Kind)
	}
}

// Connector is the optional session lifecycle of a backend. Device-backed
// accounts implement it; software backends need no session.
type Connector interface {
	Connect(ctx context.Context) error
	Disconnect() error
}

// Connect establishes the account's session when the backend needs one and
// returns a release function, a no-op for sessionless backends. Safe to
// defer on every variant, so call sites stay blind to the concrete type.
func Connect(ctx context.Context, acct SigningAccount) (func(), error) {
	c, ok := acct.(Connector)
	if !ok {
		return func() {}, nil
	}
	if err := c.Connect(ctx); err != nil {
		return func() {}, err
	}
	return func() { _ = c.Disconnect() }, nil
}
