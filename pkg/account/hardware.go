package account

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ConnectionStatus is the lifecycle state of a hardware account's device
// session.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusError        ConnectionStatus = "error"
)

// HardwareAccount signs through a physical device. The public key is not
// known until Connect queries the device; every signing operation requires
// an open transport session.
type HardwareAccount struct {
	opener     TransportOpener
	index      uint32
	client     ChainClient
	commitment rpc.CommitmentType

	mu        sync.Mutex
	status    ConnectionStatus
	transport Transport
	pubkey    solana.PublicKey
}

// NewHardwareAccount returns a disconnected hardware account for the given
// derivation index. Call Connect before any other operation.
func NewHardwareAccount(opener TransportOpener, index uint32, client ChainClient, commitment rpc.CommitmentType) *HardwareAccount {
	return &HardwareAccount{
		opener:     opener,
		index:      index,
		client:     client,
		commitment: commitment,
		status:     StatusDisconnected,
	}
}

// ConnectionState reports the current lifecycle state.
func (a *HardwareAccount) ConnectionState() ConnectionStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Connect opens a transport session and queries the device for the account's
// public key. It is idempotent while connected: a concurrent or repeated call
// is a no-op against the existing session rather than a second one.
func (a *HardwareAccount) Connect(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == StatusConnected {
		return nil
	}

	a.status = StatusConnecting
	t, err := a.opener.Open()
	if err != nil {
		a.status = StatusError
		return fmt.Errorf("failed to open device transport: %w", err)
	}

	pub, err := devicePubkey(t, a.index)
	if err != nil {
		t.Close()
		a.status = StatusError
		return fmt.Errorf("failed to read public key from device: %w", err)
	}

	a.transport = t
	a.pubkey = pub
	a.status = StatusConnected
	return nil
}

// Disconnect releases the transport and resets to disconnected. Safe to call
// from any state.
func (a *HardwareAccount) Disconnect() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	if a.transport != nil {
		err = a.transport.Close()
		a.transport = nil
	}
	a.pubkey = solana.PublicKey{}
	a.status = StatusDisconnected
	return err
}

// ensureConnected returns the open transport, failing fast before any device
// call is attempted while not connected.
func (a *HardwareAccount) ensureConnected() (Transport, solana.PublicKey, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status != StatusConnected || a.transport == nil {
		return nil, solana.PublicKey{}, fmt.Errorf("%w: device is %s", ErrNotConnected, a.status)
	}
	return a.transport, a.pubkey, nil
}

// Address returns the public key read from the device during Connect.
func (a *HardwareAccount) Address() (solana.PublicKey, error) {
	_, pub, err := a.ensureConnected()
	if err != nil {
		return solana.PublicKey{}, err
	}
	return pub, nil
}

// Balance returns the fee-adjusted spendable balance.
func (a *HardwareAccount) Balance(ctx context.Context) (uint64, error) {
	pub, err := a.Address()
	if err != nil {
		return 0, err
	}
	return spendableBalance(ctx, a.client, pub, a.commitment)
}

// AssetToBaseUnits converts a decimal asset amount to lamports.
func (a *HardwareAccount) AssetToBaseUnits(amount string) (uint64, error) {
	return AssetToBaseUnits(amount)
}

// SendDeposit transfers native SOL, prompting the device for the signature.
func (a *HardwareAccount) SendDeposit(ctx context.Context, req DepositRequest) (string, error) {
	return sendDeposit(ctx, a, a.client, a.commitment, req)
}

// SignTransaction serializes the transaction message and signs it on the
// device.
func (a *HardwareAccount) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	t, _, err := a.ensureConnected()
	if err != nil {
		return err
	}

	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize transaction message: %w", err)
	}

	sig, err := deviceSign(t, insSignMessage, a.index, msg)
	if err != nil {
		return err
	}
	tx.Signatures = []solana.Signature{sig}
	return nil
}

// SignMessage signs an off-chain message on the device. Older app firmware
// does not implement the instruction, and current firmware refuses it unless
// blind signing is enabled; both conditions surface as DeviceRejectedError
// with the matching cause.
func (a *HardwareAccount) SignMessage(_ context.Context, msg []byte) ([]byte, error) {
	t, _, err := a.ensureConnected()
	if err != nil {
		return nil, err
	}

	sig, err := deviceSign(t, insSignOffchainMessage, a.index, msg)
	if err != nil {
		return nil, err
	}
	return sig[:], nil
}
