package pool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// poolDaemon is a scripted JSON-RPC endpoint. Each entry maps a method to
// the raw result (or error) it returns.
type poolDaemon struct {
	t       *testing.T
	results map[string]string
	errors  map[string]rpcError
	calls   []string
}

func (d *poolDaemon) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(d.t, json.NewDecoder(r.Body).Decode(&req))
		d.calls = append(d.calls, req.Method)

		resp := rpcResponse{JSONRpc: "2.0", ID: req.ID}
		if e, ok := d.errors[req.Method]; ok {
			resp.Error = &e
		} else if result, ok := d.results[req.Method]; ok {
			resp.Result = json.RawMessage(result)
		} else {
			d.t.Fatalf("unexpected method %q", req.Method)
		}
		require.NoError(d.t, json.NewEncoder(w).Encode(resp))
	}
}

func newTestClient(t *testing.T, daemon *poolDaemon) *RPCClient {
	daemon.t = t
	srv := httptest.NewServer(daemon.handler())
	t.Cleanup(srv.Close)
	return NewRPCClient(srv.URL, "SOL")
}

func TestDepositAddress(t *testing.T) {
	c := newTestClient(t, &poolDaemon{
		results: map[string]string{"get_deposit_address": `{"address":"pool-addr-1"}`},
	})

	addr, err := c.DepositAddress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pool-addr-1", addr)
}

func TestDepositAddressEmpty(t *testing.T) {
	c := newTestClient(t, &poolDaemon{
		results: map[string]string{"get_deposit_address": `{}`},
	})

	_, err := c.DepositAddress(context.Background())
	assert.ErrorContains(t, err, "empty deposit address")
}

func TestPrivateBalance(t *testing.T) {
	c := newTestClient(t, &poolDaemon{
		results: map[string]string{"get_private_balance": `{"balance":2500000000}`},
	})

	balance, err := c.PrivateBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2500000000), balance)
}

func TestDepositDirectEmitsStatuses(t *testing.T) {
	daemon := &poolDaemon{
		results: map[string]string{"deposit_direct": `{"tx_hash":"pool-tx-1"}`},
	}
	c := newTestClient(t, daemon)

	var statuses []string
	tx, err := c.DepositDirect(context.Background(), DepositParams{
		Amount:   "1000000000",
		OnStatus: func(s string) { statuses = append(statuses, s) },
	})
	require.NoError(t, err)
	assert.Equal(t, "pool-tx-1", tx)
	assert.Equal(t, []string{StatusGeneratingProof, StatusCompleted}, statuses)
	assert.Equal(t, []string{"deposit_direct"}, daemon.calls)
}

func TestDepositDirectRPCError(t *testing.T) {
	c := newTestClient(t, &poolDaemon{
		errors: map[string]rpcError{
			"deposit_direct": {Code: -32000, Message: "insufficient funds"},
		},
	})

	var statuses []string
	_, err := c.DepositDirect(context.Background(), DepositParams{
		Amount:   "1000000000",
		OnStatus: func(s string) { statuses = append(statuses, s) },
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "insufficient funds")
	assert.Equal(t, []string{StatusGeneratingProof, StatusFailed}, statuses)
}

func TestWithdraw(t *testing.T) {
	c := newTestClient(t, &poolDaemon{
		results: map[string]string{"withdraw": `{"tx_hash":"withdraw-tx-1"}`},
	})

	tx, err := c.Withdraw(context.Background(), WithdrawParams{
		Destination: "dest-addr",
		Amount:      "500000000",
	})
	require.NoError(t, err)
	assert.Equal(t, "withdraw-tx-1", tx)
}

func TestCallRejectsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "daemon locked", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := NewRPCClient(srv.URL, "SOL")
	_, err := c.DepositAddress(context.Background())
	assert.ErrorContains(t, err, "status 503")
}
