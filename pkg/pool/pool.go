// Package pool defines the privacy-pool collaborator contract. The pool's
// cryptography (notes, commitments, proofs) lives in an external backend;
// this package only speaks its operation surface.
package pool

import "context"

// Status tags reported by pool deposit and withdrawal operations.
const (
	StatusGeneratingProof = "generating_proof"
	StatusSubmitting      = "submitting"
	StatusConfirming      = "confirming"
	StatusCompleted       = "completed"
	StatusFailed          = "failed"
)

// StatusFunc receives ordered status tags for a single pool operation.
type StatusFunc func(status string)

// DepositParams describes a direct deposit from a self-controlled address
// already holding the funds.
type DepositParams struct {
	Amount   string // base units
	OnStatus StatusFunc
}

// WithdrawParams describes a withdrawal to a destination address.
type WithdrawParams struct {
	Destination string
	Amount      string // base units
	OnStatus    StatusFunc
}

// Pool is the opaque privacy-pool service.
type Pool interface {
	// AssetID returns the pool's internal asset identifier.
	AssetID() string

	// DepositAddress resolves the pool's deposit-receiving address for
	// this session. For backends that require a one-time readiness
	// signature, this call triggers it.
	DepositAddress(ctx context.Context) (string, error)

	// PrivateBalance returns the spendable pooled balance in base units.
	PrivateBalance(ctx context.Context) (uint64, error)

	// DepositDirect moves already-held funds into the pool and returns
	// the deposit transaction id.
	DepositDirect(ctx context.Context, params DepositParams) (string, error)

	// Withdraw moves pooled funds to a destination address and returns
	// the withdrawal transaction id.
	Withdraw(ctx context.Context, params WithdrawParams) (string, error)
}
