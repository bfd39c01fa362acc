package account

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount is returned for malformed, non-positive or
	// non-numeric amounts. It is raised before any network call is made.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNotReady is returned when an operation is attempted before the
	// backend's readiness condition holds (e.g. keypair not yet derived).
	ErrNotReady = errors.New("account not ready")

	// ErrNotConnected is returned by device- and wallet-backed accounts
	// when the underlying connection is not established.
	ErrNotConnected = errors.New("account not connected")

	// ErrNotSupported is returned when a backend cannot perform the
	// requested signing operation at all.
	ErrNotSupported = errors.New("operation not supported by this account")
)

// InsufficientBalanceError reports a transfer that exceeds the fee-adjusted
// spendable balance. Both figures are in lamports.
type InsufficientBalanceError struct {
	Required  uint64
	Available uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: need %d lamports, have %d spendable", e.Required, e.Available)
}

// RPCError wraps a network or node failure from the underlying RPC client.
type RPCError struct {
	Op  string
	Err error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %s: %v", e.Op, e.Err)
}

func (e *RPCError) Unwrap() error { return e.Err }

// RejectionCause classifies why a hardware device refused a signing request.
type RejectionCause string

const (
	RejectedByUser       RejectionCause = "rejected by user"
	FirmwareTooOld       RejectionCause = "app firmware too old for off-chain message signing"
	BlindSigningDisabled RejectionCause = "blind signing is disabled on the device"
	UnknownRejection     RejectionCause = "request rejected by device"
)

// DeviceRejectedError is returned when the hardware device refuses a request.
// Cause distinguishes actionable conditions (outdated firmware, disabled
// blind signing) from a plain user rejection.
type DeviceRejectedError struct {
	Cause      RejectionCause
	StatusWord uint16
}

func (e *DeviceRejectedError) Error() string {
	return fmt.Sprintf("device rejected request (sw=0x%04x): %s", e.StatusWord, e.Cause)
}
