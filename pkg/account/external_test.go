package account

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWallet struct {
	connected bool
	pubkey    solana.PublicKey
	signCalls int
}

func (w *stubWallet) Connected() bool             { return w.connected }
func (w *stubWallet) PublicKey() solana.PublicKey { return w.pubkey }

func (w *stubWallet) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	w.signCalls++
	return nil
}

func (w *stubWallet) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	w.signCalls++
	return make([]byte, 64), nil
}

func TestExternalWalletDelegates(t *testing.T) {
	wallet := &stubWallet{connected: true, pubkey: solana.NewWallet().PublicKey()}
	acct, err := NewExternalWalletAccount(wallet, &stubChainClient{balance: 5_000_000}, rpc.CommitmentConfirmed)
	require.NoError(t, err)

	addr, err := acct.Address()
	require.NoError(t, err)
	assert.Equal(t, wallet.pubkey, addr)

	balance, err := acct.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000_000), balance)

	_, err = acct.SignMessage(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, wallet.signCalls)
}

func TestExternalWalletFailsAfterDisconnect(t *testing.T) {
	wallet := &stubWallet{connected: true, pubkey: solana.NewWallet().PublicKey()}
	acct, err := NewExternalWalletAccount(wallet, &stubChainClient{}, rpc.CommitmentConfirmed)
	require.NoError(t, err)

	wallet.connected = false

	_, err = acct.Address()
	assert.True(t, errors.Is(err, ErrNotConnected))

	_, err = acct.SignMessage(context.Background(), []byte("x"))
	assert.True(t, errors.Is(err, ErrNotConnected))
	assert.Zero(t, wallet.signCalls, "no delegation after disconnect")
}

// txOnlyWallet can sign transactions but not off-chain messages.
type txOnlyWallet struct {
	pubkey solana.PublicKey
}

func (w *txOnlyWallet) Connected() bool             { return true }
func (w *txOnlyWallet) PublicKey() solana.PublicKey { return w.pubkey }

func (w *txOnlyWallet) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	return nil
}

func TestExternalWalletWithoutMessageSigning(t *testing.T) {
	acct, err := NewExternalWalletAccount(&txOnlyWallet{}, &stubChainClient{}, rpc.CommitmentConfirmed)
	require.NoError(t, err)

	_, err = acct.SignMessage(context.Background(), []byte("x"))
	assert.True(t, errors.Is(err, ErrNotSupported))
}

func TestFactoryConstructsEachBackend(t *testing.T) {
	client := &stubChainClient{}

	mn, err := New(Config{Kind: KindMnemonic, Client: client, Mnemonic: testMnemonic})
	require.NoError(t, err)
	assert.IsType(t, &MnemonicAccount{}, mn)

	hw, err := New(Config{Kind: KindHardware, Client: client, Opener: &stubOpener{transport: &stubTransport{}}})
	require.NoError(t, err)
	assert.IsType(t, &HardwareAccount{}, hw)

	ext, err := New(Config{Kind: KindExternal, Client: client, Wallet: &stubWallet{connected: true}})
	require.NoError(t, err)
	assert.IsType(t, &ExternalWalletAccount{}, ext)

	_, err = New(Config{Kind: "carrier-pigeon", Client: client})
	assert.Error(t, err)

	_, err = New(Config{Kind: KindMnemonic})
	assert.Error(t, err, "chain client is required")
}

func TestConnectEstablishesSessionsPerBackend(t *testing.T) {
	client := &stubChainClient{}

	mn, err := New(Config{Kind: KindMnemonic, Client: client, Mnemonic: testMnemonic})
	require.NoError(t, err)
	cleanup, err := Connect(context.Background(), mn)
	require.NoError(t, err)
	cleanup() // no session to release

	opener := &stubOpener{transport: &stubTransport{pubkey: solana.NewWallet().PublicKey()}}
	hw, err := New(Config{Kind: KindHardware, Client: client, Opener: opener})
	require.NoError(t, err)
	cleanup, err = Connect(context.Background(), hw)
	require.NoError(t, err)
	assert.Equal(t, 1, opener.opens)
	cleanup()
	assert.Equal(t, 1, opener.transport.closes)

	opener = &stubOpener{openErr: errors.New("device unplugged")}
	hw, err = New(Config{Kind: KindHardware, Client: client, Opener: opener})
	require.NoError(t, err)
	cleanup, err = Connect(context.Background(), hw)
	require.Error(t, err)
	cleanup() // safe after a failed connect
}
