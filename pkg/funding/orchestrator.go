package funding

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"veil/pkg/pool"
	"veil/pkg/swap"
)

// DefaultSlippageBps is the quote slippage tolerance used when the caller
// does not override it (100 = 1%).
const DefaultSlippageBps = int32(100)

// ErrDestinationUnresolved is returned when no pool deposit address can be
// obtained for this session.
var ErrDestinationUnresolved = errors.New("cannot resolve pool deposit address")

// defaultAssetIDs maps pool-internal asset identifiers to the swap service's
// destination-asset identifiers.
var defaultAssetIDs = map[string]string{
	"SOL": "nep141:sol.omft.near",
}

// Params describes one cross-chain funding attempt. The orchestrator borrows
// these for the lifetime of a single call.
type Params struct {
	SourceAsset   string // swap-service id of the asset the user is paying with
	Amount        string // source amount in base units
	SenderAddress string // source-chain address funds leave from

	// SendDeposit moves the source funds to the swap deposit address.
	// Supplied by the signing account; invoked exactly once.
	SendDeposit swap.DepositFunc

	// OnStatus, if set, is invoked synchronously for every transition.
	OnStatus Listener
}

// Options tune an orchestrator.
type Options struct {
	SlippageBps int32             // 0 means DefaultSlippageBps
	Referral    string            // optional referral tag for quotes
	AssetIDs    map[string]string // overrides defaultAssetIDs when set
}

// Orchestrator coordinates the swap service and the privacy pool into one
// resumable, observable funding operation. It holds no per-attempt state, so
// independent attempts may run concurrently.
type Orchestrator struct {
	pool        pool.Pool
	swapper     swap.Service
	assetIDs    map[string]string
	slippageBps int32
	referral    string
	log         *zap.Logger
}

// NewOrchestrator wires a pool and a swap service together.
func NewOrchestrator(p pool.Pool, swapper swap.Service, log *zap.Logger, opts Options) *Orchestrator {
	slippage := opts.SlippageBps
	if slippage <= 0 {
		slippage = DefaultSlippageBps
	}
	assetIDs := opts.AssetIDs
	if assetIDs == nil {
		assetIDs = defaultAssetIDs
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		pool:        p,
		swapper:     swapper,
		assetIDs:    assetIDs,
		slippageBps: slippage,
		referral:    opts.Referral,
		log:         log,
	}
}

// FundCrossChain drives one funding attempt to a terminal status and returns
// the pool deposit's transaction id. Failures are reported twice by design:
// once as a terminal failed status and once as the returned error.
func (o *Orchestrator) FundCrossChain(ctx context.Context, params Params) (string, error) {
	emit := func(s Status) {
		if params.OnStatus != nil {
			params.OnStatus(s)
		}
	}

	txHash, err := o.fundCrossChain(ctx, params, emit)
	if err != nil {
		o.log.Error("cross-chain funding failed", zap.Error(err))
		emit(Status{Kind: StatusFailed, Err: err})
		return "", err
	}
	emit(Status{Kind: StatusCompleted, TxHash: txHash})
	return txHash, nil
}

func (o *Orchestrator) fundCrossChain(ctx context.Context, params Params, emit Listener) (string, error) {
	emit(Status{Kind: StatusPreparing})

	// May trigger the pool backend's one-time readiness signature; the
	// address is not assumed to be known beforehand.
	poolAddress, err := o.pool.DepositAddress(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDestinationUnresolved, err)
	}
	if poolAddress == "" {
		return "", ErrDestinationUnresolved
	}

	destinationAsset, ok := o.assetIDs[o.pool.AssetID()]
	if !ok {
		return "", fmt.Errorf("no swap asset mapping for pool asset %q", o.pool.AssetID())
	}

	emit(Status{
		Kind:             StatusGettingQuote,
		SourceAsset:      params.SourceAsset,
		DestinationAsset: destinationAsset,
	})

	quoteParams := swap.QuoteParams{
		SenderAddress:    params.SenderAddress,
		RecipientAddress: poolAddress,
		SourceAsset:      params.SourceAsset,
		DestinationAsset: destinationAsset,
		Amount:           params.Amount,
		SlippageBps:      o.slippageBps,
		Referral:         o.referral,
	}

	err = o.swapper.Swap(ctx, quoteParams, params.SendDeposit, func(ev swap.Event) {
		switch ev.Kind {
		case swap.EventQuoteReady:
			emit(Status{Kind: StatusAwaitingDeposit, DepositAddress: ev.DepositAddress})
		case swap.EventDepositConfirmed:
			emit(Status{Kind: StatusDepositSent, TxHash: ev.TxHash})
		case swap.EventPending:
			emit(Status{Kind: StatusSwapping, SwapState: ev.State})
		case swap.EventCompleted:
			emit(Status{Kind: StatusSwapCompleted})
		}
		// Failed and refunded swaps surface through Swap's return value.
	})
	if err != nil {
		// A failed or refunded swap must never reach the pool deposit.
		return "", err
	}

	emit(Status{Kind: StatusDepositingToPool})

	// The service reports no settlement amount, so the pool deposit uses
	// the originally requested amount; slippage may leave a small mismatch.
	return o.pool.DepositDirect(ctx, pool.DepositParams{Amount: params.Amount})
}

// Fund is the same-chain path: a direct pool deposit, no swap service
// involved.
func (o *Orchestrator) Fund(ctx context.Context, amount string, onStatus pool.StatusFunc) (string, error) {
	return o.pool.DepositDirect(ctx, pool.DepositParams{Amount: amount, OnStatus: onStatus})
}

// Withdraw passes through to the pool.
func (o *Orchestrator) Withdraw(ctx context.Context, destination, amount string, onStatus pool.StatusFunc) (string, error) {
	return o.pool.Withdraw(ctx, pool.WithdrawParams{
		Destination: destination,
		Amount:      amount,
		OnStatus:    onStatus,
	})
}
