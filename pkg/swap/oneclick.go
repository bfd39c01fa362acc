package swap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = 10 * time.Second
	quoteDeadline       = 24 * time.Hour
)

// OneClickService implements Service over the NEAR Intents 1Click API.
type OneClickService struct {
	client       *oneclick.APIClient
	authCtx      context.Context
	pollInterval time.Duration
	log          *zap.Logger
}

// NewOneClickService creates an authenticated 1Click-backed swap service.
func NewOneClickService(jwtToken string, log *zap.Logger) *OneClickService {
	config := oneclick.NewConfiguration()
	authCtx := context.WithValue(context.Background(), oneclick.ContextAccessToken, jwtToken)

	return &OneClickService{
		client:       oneclick.NewAPIClient(config),
		authCtx:      authCtx,
		pollInterval: defaultPollInterval,
		log:          log,
	}
}

// SetPollInterval overrides how often execution status is checked.
func (s *OneClickService) SetPollInterval(interval time.Duration) {
	if interval > 0 {
		s.pollInterval = interval
	}
}

// Tokens returns all assets the service accepts as swap sources.
func (s *OneClickService) Tokens(ctx context.Context) ([]Token, error) {
	resp, httpResp, err := s.client.OneClickAPI.GetTokens(s.authCtx).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != 200 {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	tokens := make([]Token, 0, len(resp))
	for _, t := range resp {
		tokens = append(tokens, Token{
			Symbol:          t.GetSymbol(),
			Blockchain:      t.GetBlockchain(),
			AssetID:         t.GetAssetId(),
			ContractAddress: t.GetContractAddress(),
			Decimals:        int32(t.GetDecimals()),
		})
	}
	return tokens, nil
}

// FindToken searches for a token by symbol, optionally on a specific chain.
// Exact symbol matches win over partial ones.
func (s *OneClickService) FindToken(ctx context.Context, symbol, blockchain string) (*Token, error) {
	tokens, err := s.Tokens(ctx)
	if err != nil {
		return nil, err
	}

	symbol = strings.ToUpper(symbol)
	blockchain = strings.ToLower(blockchain)

	for i := range tokens {
		if strings.ToUpper(tokens[i].Symbol) != symbol {
			continue
		}
		if blockchain == "" || strings.ToLower(tokens[i].Blockchain) == blockchain {
			return &tokens[i], nil
		}
	}
	if blockchain == "" {
		for i := range tokens {
			if strings.Contains(strings.ToUpper(tokens[i].Symbol), symbol) {
				return &tokens[i], nil
			}
		}
		return nil, fmt.Errorf("token '%s' not found", symbol)
	}
	return nil, fmt.Errorf("token '%s' not found on chain '%s'", symbol, blockchain)
}

// Swap requests a quote, invokes sendDeposit exactly once for the quoted
// deposit address, submits the deposit hash, then polls execution status
// until a terminal state.
func (s *OneClickService) Swap(ctx context.Context, params QuoteParams, sendDeposit DepositFunc, onEvent EventFunc) error {
	notify := func(ev Event) {
		if onEvent != nil {
			onEvent(ev)
		}
	}

	quote, err := s.getQuote(params)
	if err != nil {
		return err
	}
	depositAddress := quote.GetDepositAddress()
	if depositAddress == "" {
		return fmt.Errorf("quote carries no deposit address")
	}

	s.log.Info("quote received",
		zap.String("deposit_address", depositAddress),
		zap.String("amount_out", quote.GetAmountOutFormatted()),
		zap.Float64("time_estimate_sec", float64(quote.GetTimeEstimate())),
	)
	notify(Event{Kind: EventQuoteReady, DepositAddress: depositAddress})

	txHash, err := sendDeposit(ctx, depositAddress, params.Amount)
	if err != nil {
		return fmt.Errorf("deposit failed: %w", err)
	}

	// Speeds up detection; the service also watches the chain, so a failed
	// submission is not fatal.
	if err := s.submitDepositTx(depositAddress, txHash); err != nil {
		s.log.Warn("failed to submit deposit tx hash", zap.Error(err))
	}
	notify(Event{Kind: EventDepositConfirmed, TxHash: txHash})

	return s.awaitCompletion(ctx, depositAddress, notify)
}

// awaitCompletion polls execution status, emitting pending events on state
// changes, until the service reports a terminal status.
func (s *OneClickService) awaitCompletion(ctx context.Context, depositAddress string, notify EventFunc) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	lastState := ""
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		status, err := s.getExecutionStatus(depositAddress)
		if err != nil {
			s.log.Warn("status check failed", zap.Error(err))
			continue
		}

		state := strings.ToUpper(status.GetStatus())
		switch state {
		case "SUCCESS", "COMPLETED":
			notify(Event{Kind: EventCompleted})
			return nil
		case "FAILED":
			notify(Event{Kind: EventFailed, Reason: "Swap failed"})
			return &SwapError{Status: state, Reason: "Swap failed"}
		case "REFUNDED":
			notify(Event{Kind: EventRefunded, Reason: "Swap refunded"})
			return &SwapError{Status: state, Reason: "Swap refunded"}
		default:
			if state != lastState {
				lastState = state
				notify(Event{Kind: EventPending, State: state})
			}
		}
	}
}

// ExecutionStatus is a point-in-time view of a swap, looked up by deposit
// address.
type ExecutionStatus struct {
	State     string
	UpdatedAt time.Time
	DepositTx string
	OutputTx  string
	AmountIn  string
	AmountOut string
}

// Status looks up the current execution status for a deposit address.
func (s *OneClickService) Status(ctx context.Context, depositAddress string) (*ExecutionStatus, error) {
	resp, err := s.getExecutionStatus(depositAddress)
	if err != nil {
		return nil, err
	}

	details := resp.GetSwapDetails()
	out := &ExecutionStatus{
		State:     strings.ToUpper(resp.GetStatus()),
		UpdatedAt: resp.GetUpdatedAt(),
	}
	if txs := details.GetOriginChainTxHashes(); len(txs) > 0 {
		out.DepositTx = txs[0].GetHash()
	}
	if txs := details.GetDestinationChainTxHashes(); len(txs) > 0 {
		out.OutputTx = txs[0].GetHash()
	}
	if details.HasAmountInFormatted() {
		out.AmountIn = details.GetAmountInFormatted()
	}
	if details.HasAmountOutFormatted() {
		out.AmountOut = details.GetAmountOutFormatted()
	}
	return out, nil
}

func (s *OneClickService) getQuote(params QuoteParams) (*oneclick.Quote, error) {
	if params.RecipientAddress == "" {
		return nil, fmt.Errorf("recipient address is required")
	}

	refundTo := params.SenderAddress
	deadline := time.Now().Add(quoteDeadline)

	quoteReq := oneclick.NewQuoteRequest(
		false,                       // dry - false to get a real deposit address
		"EXACT_INPUT",               // swapType
		float32(params.SlippageBps), // slippageTolerance
		params.SourceAsset,          // originAsset
		"ORIGIN_CHAIN",              // depositType
		params.DestinationAsset,     // destinationAsset
		params.Amount,               // amount in smallest unit
		refundTo,                    // refundTo
		"ORIGIN_CHAIN",              // refundType
		params.RecipientAddress,     // recipient
		"DESTINATION_CHAIN",         // recipientType
		deadline,                    // deadline
	)
	if params.Referral != "" {
		quoteReq.SetReferral(params.Referral)
	}

	resp, httpResp, err := s.client.OneClickAPI.GetQuote(s.authCtx).QuoteRequest(*quoteReq).Execute()
	if err != nil {
		return nil, apiError("failed to get quote", httpResp, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}
	if resp == nil {
		return nil, fmt.Errorf("empty quote response")
	}

	quote := resp.GetQuote()
	return &quote, nil
}

func (s *OneClickService) getExecutionStatus(depositAddress string) (*oneclick.GetExecutionStatusResponse, error) {
	resp, httpResp, err := s.client.OneClickAPI.GetExecutionStatus(s.authCtx).DepositAddress(depositAddress).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != 200 {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}
	return resp, nil
}

func (s *OneClickService) submitDepositTx(depositAddress, txHash string) error {
	req := oneclick.NewSubmitDepositTxRequest(depositAddress, txHash)

	_, httpResp, err := s.client.OneClickAPI.SubmitDepositTx(s.authCtx).SubmitDepositTxRequest(*req).Execute()
	if err != nil {
		return fmt.Errorf("failed to submit deposit: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != 200 && httpResp.StatusCode != 201 {
		return fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}
	return nil
}

// apiError digs the actual error message out of an API error response body.
func apiError(prefix string, httpResp *http.Response, err error) error {
	if httpResp == nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	defer httpResp.Body.Close()

	bodyBytes, readErr := io.ReadAll(httpResp.Body)
	if readErr != nil || len(bodyBytes) == 0 {
		return fmt.Errorf("%s (status %d): %w", prefix, httpResp.StatusCode, err)
	}

	var errorResp map[string]interface{}
	if jsonErr := json.Unmarshal(bodyBytes, &errorResp); jsonErr == nil {
		if message, ok := errorResp["message"].(string); ok {
			return fmt.Errorf("%s (status %d): %s", prefix, httpResp.StatusCode, message)
		}
		if errors, ok := errorResp["errors"]; ok {
			return fmt.Errorf("%s (status %d): %v", prefix, httpResp.StatusCode, errors)
		}
	}
	return fmt.Errorf("%s (status %d): %s", prefix, httpResp.StatusCode, string(bodyBytes))
}
