package account

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransport answers APDUs with canned payloads and counts device calls.
type stubTransport struct {
	pubkey     solana.PublicKey
	signSW     uint16 // status word for signing instructions; 0 means OK
	apdus      [][]byte
	exchanges  int
	pubkeyReqs int
	signReqs   int
	closes     int
}

func (s *stubTransport) Exchange(apdu []byte) ([]byte, error) {
	s.exchanges++
	s.apdus = append(s.apdus, append([]byte(nil), apdu...))
	ins := apdu[1]

	switch ins {
	case insGetPubkey:
		s.pubkeyReqs++
		return withSW(s.pubkey[:], swOK), nil
	case insSignMessage, insSignOffchainMessage:
		s.signReqs++
		if s.signSW != 0 && s.signSW != swOK {
			return withSW(nil, s.signSW), nil
		}
		if apdu[3]&p2More != 0 {
			// Intermediate chunk; the signature comes with the last one.
			return withSW(nil, swOK), nil
		}
		sig := make([]byte, 64)
		return withSW(sig, swOK), nil
	default:
		return withSW(nil, 0x6e00), nil
	}
}

func (s *stubTransport) Close() error {
	s.closes++
	return nil
}

func withSW(payload []byte, sw uint16) []byte {
	out := append([]byte{}, payload...)
	return binary.BigEndian.AppendUint16(out, sw)
}

type stubOpener struct {
	transport *stubTransport
	openErr   error
	opens     int
}

func (s *stubOpener) Open() (Transport, error) {
	s.opens++
	if s.openErr != nil {
		return nil, s.openErr
	}
	return s.transport, nil
}

func newTestHardwareAccount(client ChainClient) (*HardwareAccount, *stubOpener) {
	opener := &stubOpener{transport: &stubTransport{pubkey: solana.NewWallet().PublicKey()}}
	return NewHardwareAccount(opener, 0, client, rpc.CommitmentConfirmed), opener
}

func TestHardwareOperationsFailWhileDisconnected(t *testing.T) {
	acct, opener := newTestHardwareAccount(&stubChainClient{})
	require.Equal(t, StatusDisconnected, acct.ConnectionState())

	_, err := acct.Address()
	assert.True(t, errors.Is(err, ErrNotConnected))

	_, err = acct.SignMessage(context.Background(), []byte("x"))
	assert.True(t, errors.Is(err, ErrNotConnected))

	err = acct.SignTransaction(context.Background(), &solana.Transaction{})
	assert.True(t, errors.Is(err, ErrNotConnected))

	assert.Zero(t, opener.opens, "no transport may be opened")
	assert.Zero(t, opener.transport.exchanges, "no device call may be made")
}

func TestHardwareConnectIdempotent(t *testing.T) {
	acct, opener := newTestHardwareAccount(&stubChainClient{})

	require.NoError(t, acct.Connect(context.Background()))
	require.Equal(t, StatusConnected, acct.ConnectionState())
	require.NoError(t, acct.Connect(context.Background()))

	assert.Equal(t, 1, opener.opens, "second connect reuses the session")
	assert.Equal(t, 1, opener.transport.pubkeyReqs, "at most one pubkey query")

	addr, err := acct.Address()
	require.NoError(t, err)
	assert.Equal(t, opener.transport.pubkey, addr)
}

func TestHardwareConnectFailureReleasesTransport(t *testing.T) {
	opener := &stubOpener{openErr: errors.New("device unplugged")}
	acct := NewHardwareAccount(opener, 0, &stubChainClient{}, rpc.CommitmentConfirmed)

	require.Error(t, acct.Connect(context.Background()))
	assert.Equal(t, StatusError, acct.ConnectionState())

	// Retry succeeds once the device is back.
	opener.openErr = nil
	opener.transport = &stubTransport{pubkey: solana.NewWallet().PublicKey()}
	require.NoError(t, acct.Connect(context.Background()))
	assert.Equal(t, StatusConnected, acct.ConnectionState())
}

func TestHardwareDisconnectResets(t *testing.T) {
	acct, opener := newTestHardwareAccount(&stubChainClient{})
	require.NoError(t, acct.Connect(context.Background()))

	require.NoError(t, acct.Disconnect())
	assert.Equal(t, StatusDisconnected, acct.ConnectionState())
	assert.Equal(t, 1, opener.transport.closes)

	_, err := acct.Address()
	assert.True(t, errors.Is(err, ErrNotConnected))

	// Disconnect is safe to repeat from any state.
	require.NoError(t, acct.Disconnect())
	assert.Equal(t, 1, opener.transport.closes)
}

func TestHardwareSignMessageTranslatesDeviceRejections(t *testing.T) {
	tests := []struct {
		sw   uint16
		want RejectionCause
	}{
		{swInsNotSupported, FirmwareTooOld},
		{swBlindSigningDisabled, BlindSigningDisabled},
		{swUserRejected, RejectedByUser},
	}

	for _, tc := range tests {
		acct, opener := newTestHardwareAccount(&stubChainClient{})
		opener.transport.signSW = tc.sw
		require.NoError(t, acct.Connect(context.Background()))

		_, err := acct.SignMessage(context.Background(), []byte("off-chain"))
		require.Error(t, err, "sw=0x%04x", tc.sw)

		var rejected *DeviceRejectedError
		require.True(t, errors.As(err, &rejected), "sw=0x%04x: got %v", tc.sw, err)
		assert.Equal(t, tc.want, rejected.Cause)
		assert.Equal(t, tc.sw, rejected.StatusWord)
	}
}

func TestHardwareSignMessageChunksLargePayloads(t *testing.T) {
	acct, opener := newTestHardwareAccount(&stubChainClient{})
	require.NoError(t, acct.Connect(context.Background()))
	transport := opener.transport

	msg := make([]byte, 300)
	for i := range msg {
		msg[i] = byte(i)
	}

	sig, err := acct.SignMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Len(t, sig, 64)

	// Skip the connect-time pubkey APDU.
	signAPDUs := transport.apdus[1:]
	require.Len(t, signAPDUs, 2, "317 bytes of path+message need two chunks")

	var sent []byte
	for i, apdu := range signAPDUs {
		declared := int(apdu[4])
		data := apdu[5:]
		assert.Equal(t, declared, len(data), "chunk %d length field must match the data", i)
		assert.LessOrEqual(t, declared, 255)
		sent = append(sent, data...)
	}

	first, second := signAPDUs[0][3], signAPDUs[1][3]
	assert.Equal(t, p2More, first, "first chunk announces a continuation")
	assert.Equal(t, p2Extend, second, "last chunk extends without announcing more")

	want := append(encodePath(DerivationPath(0)), msg...)
	assert.Equal(t, want, sent, "device receives the exact path and message bytes")
}

func TestScanAccountsSingleTransportSession(t *testing.T) {
	transport := &stubTransport{pubkey: solana.NewWallet().PublicKey()}
	opener := &stubOpener{transport: transport}
	client := &stubChainClient{
		balance:    10_000_000,
		balanceErr: map[int]error{1: errors.New("node hiccup")},
	}

	accounts, err := ScanAccounts(context.Background(), opener, client, rpc.CommitmentConfirmed, 3)
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	assert.Equal(t, 1, opener.opens, "exactly one transport session")
	assert.Equal(t, 1, transport.closes, "transport closed exactly once")
	assert.Equal(t, 3, transport.pubkeyReqs, "indices 0,1,2 queried")

	assert.NoError(t, accounts[0].Err)
	assert.Equal(t, uint64(7_000_000), accounts[0].Balance)
	assert.Error(t, accounts[1].Err, "mid-scan balance failure is recorded, not fatal")
	assert.NoError(t, accounts[2].Err)

	for i, a := range accounts {
		assert.Equal(t, uint32(i), a.Index)
		assert.NotEmpty(t, a.Address)
	}
}
