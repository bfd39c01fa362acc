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

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// stubChainClient counts RPC calls and serves canned responses.
type stubChainClient struct {
	balance    uint64
	balanceErr map[int]error // keyed by call number, starting at 0

	balanceCalls   int
	blockhashCalls int
	sendCalls      int
	statusCalls    int
}

func (s *stubChainClient) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	call := s.balanceCalls
	s.balanceCalls++
	if err, ok := s.balanceErr[call]; ok {
		return nil, err
	}
	return &rpc.GetBalanceResult{Value: s.balance}, nil
}

func (s *stubChainClient) GetRecentBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetRecentBlockhashResult, error) {
	s.blockhashCalls++
	return &rpc.GetRecentBlockhashResult{
		Value: &rpc.BlockhashResult{Blockhash: solana.Hash{}},
	}, nil
}

func (s *stubChainClient) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	s.sendCalls++
	return solana.Signature{1}, nil
}

func (s *stubChainClient) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	s.statusCalls++
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{
			{ConfirmationStatus: rpc.ConfirmationStatusFinalized},
		},
	}, nil
}

func (s *stubChainClient) totalCalls() int {
	return s.balanceCalls + s.blockhashCalls + s.sendCalls + s.statusCalls
}

func newTestMnemonicAccount(t *testing.T, client ChainClient) *MnemonicAccount {
	t.Helper()
	acct, err := NewMnemonicAccount(testMnemonic, "", 0, client, rpc.CommitmentConfirmed)
	require.NoError(t, err)
	return acct
}

func TestMnemonicAccountRejectsBadPhrase(t *testing.T) {
	_, err := NewMnemonicAccount("not a valid phrase", "", 0, &stubChainClient{}, rpc.CommitmentConfirmed)
	require.Error(t, err)
}

func TestMnemonicAddressDeterministic(t *testing.T) {
	a := newTestMnemonicAccount(t, &stubChainClient{})
	b := newTestMnemonicAccount(t, &stubChainClient{})

	addrA, err := a.Address()
	require.NoError(t, err)
	addrB, err := b.Address()
	require.NoError(t, err)
	assert.Equal(t, addrA, addrB)

	// Cached key: repeated calls return the same value.
	again, err := a.Address()
	require.NoError(t, err)
	assert.Equal(t, addrA, again)

	other, err := NewMnemonicAccount(testMnemonic, "", 1, &stubChainClient{}, rpc.CommitmentConfirmed)
	require.NoError(t, err)
	addrOther, err := other.Address()
	require.NoError(t, err)
	assert.NotEqual(t, addrA, addrOther, "different indices derive different keys")
}

func TestBalanceAppliesFeeReserve(t *testing.T) {
	tests := []struct {
		raw  uint64
		want uint64
	}{
		{5_000_000, 2_000_000},
		{3_000_000, 0},
		{1_000_000, 0},
		{0, 0},
	}

	for _, tc := range tests {
		client := &stubChainClient{balance: tc.raw}
		acct := newTestMnemonicAccount(t, client)

		got, err := acct.Balance(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "raw %d", tc.raw)
	}
}

func TestBalanceWrapsRPCError(t *testing.T) {
	client := &stubChainClient{balanceErr: map[int]error{0: errors.New("node down")}}
	acct := newTestMnemonicAccount(t, client)

	_, err := acct.Balance(context.Background())
	require.Error(t, err)

	var rpcErr *RPCError
	assert.True(t, errors.As(err, &rpcErr))
}

func TestSendDepositRejectsInvalidAmountBeforeNetwork(t *testing.T) {
	recipient := solana.NewWallet().PublicKey().String()

	for _, amount := range []string{"0", "-5", "abc", "1.5"} {
		client := &stubChainClient{balance: 10_000_000}
		acct := newTestMnemonicAccount(t, client)

		_, err := acct.SendDeposit(context.Background(), DepositRequest{Address: recipient, Amount: amount})
		require.Error(t, err, "amount %q", amount)
		assert.True(t, errors.Is(err, ErrInvalidAmount), "amount %q: got %v", amount, err)
		assert.Zero(t, client.totalCalls(), "amount %q must not touch the network", amount)
	}
}

func TestSendDepositInsufficientBalance(t *testing.T) {
	client := &stubChainClient{balance: 4_000_000} // 1_000_000 spendable
	acct := newTestMnemonicAccount(t, client)

	_, err := acct.SendDeposit(context.Background(), DepositRequest{
		Address: solana.NewWallet().PublicKey().String(),
		Amount:  "2000000",
	})
	require.Error(t, err)

	var insufficient *InsufficientBalanceError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, uint64(2_000_000), insufficient.Required)
	assert.Equal(t, uint64(1_000_000), insufficient.Available)
	assert.Zero(t, client.sendCalls, "no transaction may be submitted")
}

func TestSendDepositHappyPath(t *testing.T) {
	client := &stubChainClient{balance: 1_000_000_000}
	acct := newTestMnemonicAccount(t, client)

	sig, err := acct.SendDeposit(context.Background(), DepositRequest{
		Address: solana.NewWallet().PublicKey().String(),
		Amount:  "500000000",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sig)
	assert.Equal(t, 1, client.sendCalls, "single submission, no retry")
}

func TestSignMessageMnemonic(t *testing.T) {
	acct := newTestMnemonicAccount(t, &stubChainClient{})

	sig, err := acct.SignMessage(context.Background(), []byte("hello"))
	require.NoError(t, err)
	assert.Len(t, sig, 64)
}
