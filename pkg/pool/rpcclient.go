package pool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// RPCClient implements Pool over the JSON-RPC interface of a local pool
// daemon, which holds the note set and proving keys. Shape follows
// wallet-rpc daemons: one POST endpoint, method + params envelopes.
type RPCClient struct {
	url     string
	assetID string
	client  *http.Client
}

// NewRPCClient returns a Pool backed by the daemon at url (e.g.
// "http://127.0.0.1:18082/json_rpc").
func NewRPCClient(url, assetID string) *RPCClient {
	return &RPCClient{
		url:     url,
		assetID: assetID,
		client:  &http.Client{},
	}
}

type rpcRequest struct {
	JSONRpc string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRpc string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// AssetID returns the pool's internal asset identifier.
func (c *RPCClient) AssetID() string { return c.assetID }

// DepositAddress resolves the session's deposit-receiving address. The
// daemon performs its one-time readiness signature on first call.
func (c *RPCClient) DepositAddress(ctx context.Context) (string, error) {
	result, err := c.call(ctx, "get_deposit_address", nil)
	if err != nil {
		return "", fmt.Errorf("pool get_deposit_address failed: %w", err)
	}

	var out struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		return "", fmt.Errorf("failed to parse deposit address: %w", err)
	}
	if out.Address == "" {
		return "", fmt.Errorf("pool returned empty deposit address")
	}
	return out.Address, nil
}

// PrivateBalance returns the spendable pooled balance in base units.
func (c *RPCClient) PrivateBalance(ctx context.Context) (uint64, error) {
	result, err := c.call(ctx, "get_private_balance", nil)
	if err != nil {
		return 0, fmt.Errorf("pool get_private_balance failed: %w", err)
	}

	var out struct {
		Balance uint64 `json:"balance"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		return 0, fmt.Errorf("failed to parse private balance: %w", err)
	}
	return out.Balance, nil
}

// DepositDirect instructs the daemon to sweep already-held funds into the
// pool. The daemon signs with the session key, so no external signature is
// needed here.
func (c *RPCClient) DepositDirect(ctx context.Context, params DepositParams) (string, error) {
	return c.submit(ctx, "deposit_direct", map[string]interface{}{
		"amount": params.Amount,
	}, params.OnStatus)
}

// Withdraw instructs the daemon to withdraw pooled funds to a destination.
func (c *RPCClient) Withdraw(ctx context.Context, params WithdrawParams) (string, error) {
	return c.submit(ctx, "withdraw", map[string]interface{}{
		"destination": params.Destination,
		"amount":      params.Amount,
	}, params.OnStatus)
}

func (c *RPCClient) submit(ctx context.Context, method string, params map[string]interface{}, onStatus StatusFunc) (string, error) {
	notify := func(status string) {
		if onStatus != nil {
			onStatus(status)
		}
	}

	notify(StatusGeneratingProof)
	result, err := c.call(ctx, method, params)
	if err != nil {
		notify(StatusFailed)
		return "", fmt.Errorf("pool %s failed: %w", method, err)
	}

	var out struct {
		TxHash string `json:"tx_hash"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		notify(StatusFailed)
		return "", fmt.Errorf("failed to parse %s result: %w", method, err)
	}
	if out.TxHash == "" {
		notify(StatusFailed)
		return "", fmt.Errorf("pool returned empty transaction hash")
	}

	notify(StatusCompleted)
	return out.TxHash, nil
}

// call makes one JSON-RPC request to the pool daemon.
func (c *RPCClient) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRpc: "2.0",
		ID:      "0",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("RPC returned status %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("RPC error (code %d): %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}
