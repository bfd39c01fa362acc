package account

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	bip39 "github.com/tyler-smith/go-bip39"
)

// MnemonicAccount derives its keypair from a recovery phrase and account
// index. The keypair is derived once on first use and cached; signing is
// fully local with no device interaction.
type MnemonicAccount struct {
	mnemonic   string
	passphrase string
	index      uint32
	client     ChainClient
	commitment rpc.CommitmentType

	mu      sync.Mutex
	ready   bool
	keypair solana.PrivateKey
}

// NewMnemonicAccount validates the recovery phrase and returns an account
// for the given derivation index. Key material is not derived until needed.
func NewMnemonicAccount(mnemonic, passphrase string, index uint32, client ChainClient, commitment rpc.CommitmentType) (*MnemonicAccount, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid recovery phrase")
	}
	return &MnemonicAccount{
		mnemonic:   mnemonic,
		passphrase: passphrase,
		index:      index,
		client:     client,
		commitment: commitment,
	}, nil
}

// key derives the keypair on first call and reuses the cached value after.
func (a *MnemonicAccount) key() (solana.PrivateKey, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ready {
		return a.keypair, nil
	}

	seed := bip39.NewSeed(a.mnemonic, a.passphrase)
	kp, err := deriveKeypair(seed, a.index)
	if err != nil {
		return nil, fmt.Errorf("%w: key derivation failed: %v", ErrNotReady, err)
	}
	a.keypair = kp
	a.ready = true
	return a.keypair, nil
}

// Address returns the derived public key.
func (a *MnemonicAccount) Address() (solana.PublicKey, error) {
	kp, err := a.key()
	if err != nil {
		return solana.PublicKey{}, err
	}
	return kp.PublicKey(), nil
}

// Balance returns the fee-adjusted spendable balance.
func (a *MnemonicAccount) Balance(ctx context.Context) (uint64, error) {
	pub, err := a.Address()
	if err != nil {
		return 0, err
	}
	return spendableBalance(ctx, a.client, pub, a.commitment)
}

// AssetToBaseUnits converts a decimal asset amount to lamports.
func (a *MnemonicAccount) AssetToBaseUnits(amount string) (uint64, error) {
	return AssetToBaseUnits(amount)
}

// SendDeposit transfers native SOL to the given address.
func (a *MnemonicAccount) SendDeposit(ctx context.Context, req DepositRequest) (string, error) {
	return sendDeposit(ctx, a, a.client, a.commitment, req)
}

// SignTransaction signs tx with the cached keypair.
func (a *MnemonicAccount) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	kp, err := a.key()
	if err != nil {
		return err
	}
	pub := kp.PublicKey()
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return &kp
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// SignMessage signs an arbitrary message with the cached keypair.
func (a *MnemonicAccount) SignMessage(_ context.Context, msg []byte) ([]byte, error) {
	kp, err := a.key()
	if err != nil {
		return nil, err
	}
	sig, err := kp.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return sig[:], nil
}
