// Package swap defines the cross-chain swap-service contract and its NEAR
// Intents 1Click implementation. A swap converts a source-chain asset into
// the destination asset at a service-provided deposit address.
package swap

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Token is one asset supported as a swap source.
type Token struct {
	Symbol          string
	Blockchain      string
	AssetID         string
	ContractAddress string
	Decimals        int32
}

// QuoteParams describes one swap attempt.
type QuoteParams struct {
	SenderAddress    string // source-chain address funds leave from
	RecipientAddress string // destination address receiving swapped funds
	SourceAsset      string // swap-service asset id
	DestinationAsset string // swap-service asset id
	Amount           string // base units of the source asset
	SlippageBps      int32  // basis points; 100 = 1%
	Referral         string // optional referral tag
}

// EventKind tags the linear lifecycle events of a swap.
type EventKind string

const (
	EventQuoteReady       EventKind = "quote_ready"
	EventDepositConfirmed EventKind = "deposit_confirmed"
	EventPending          EventKind = "pending"
	EventCompleted        EventKind = "completed"
	EventFailed           EventKind = "failed"
	EventRefunded         EventKind = "refunded"
)

// Event is one swap lifecycle notification.
type Event struct {
	Kind           EventKind
	DepositAddress string // quote_ready
	TxHash         string // deposit_confirmed
	State          string // pending: raw service state
	Reason         string // failed / refunded
}

// DepositFunc moves funds from the sender to the service's deposit address
// and returns the source-chain transaction hash. Supplied by the account
// layer; the service invokes it exactly once per swap.
type DepositFunc func(ctx context.Context, address, amount string) (string, error)

// EventFunc receives lifecycle events in order.
type EventFunc func(Event)

// Service drives cross-chain swaps to completion.
type Service interface {
	// Tokens returns the assets supported as swap sources.
	Tokens(ctx context.Context) ([]Token, error)

	// FindToken resolves a symbol (optionally scoped to a blockchain) to
	// a supported token.
	FindToken(ctx context.Context, symbol, blockchain string) (*Token, error)

	// Swap drives one swap to a terminal state, emitting events along the
	// way. A failed or refunded swap returns a *SwapError.
	Swap(ctx context.Context, params QuoteParams, sendDeposit DepositFunc, onEvent EventFunc) error
}

// SwapError is the terminal error for a swap that did not settle.
type SwapError struct {
	Status string // service-reported terminal status
	Reason string
}

func (e *SwapError) Error() string {
	return fmt.Sprintf("swap %s: %s", e.Status, e.Reason)
}

// Refunded reports whether the source funds were returned to the sender.
func (e *SwapError) Refunded() bool { return e.Status == "REFUNDED" }

// BaseUnits converts a decimal amount string into the asset's integer base
// units without floating point, truncating fractional digits beyond the
// asset's precision.
func BaseUnits(amount string, decimals int32) (string, error) {
	s := strings.TrimSpace(amount)
	if s == "" || strings.HasPrefix(s, "-") {
		return "", fmt.Errorf("invalid amount %q", amount)
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if _, err := strconv.ParseUint(intPart, 10, 64); err != nil {
		return "", fmt.Errorf("invalid amount %q", amount)
	}
	if len(fracPart) > int(decimals) {
		fracPart = fracPart[:decimals]
	}
	if fracPart != "" {
		if _, err := strconv.ParseUint(fracPart, 10, 64); err != nil {
			return "", fmt.Errorf("invalid amount %q", amount)
		}
	}
	for len(fracPart) < int(decimals) {
		fracPart += "0"
	}

	out := strings.TrimLeft(intPart+fracPart, "0")
	if out == "" {
		return "", fmt.Errorf("invalid amount %q: must be greater than zero", amount)
	}
	return out, nil
}
