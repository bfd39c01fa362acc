// Package funding drives the cross-chain funding protocol: quote, source
// deposit, swap observation, then a privacy-pool deposit, reported as one
// ordered status stream per attempt.
package funding

import (
	"fmt"
	"sync"
)

// StatusKind tags the orchestrator's current state. A single attempt's
// stream is strictly forward and ends with exactly one of completed or
// failed.
type StatusKind string

const (
	StatusPreparing        StatusKind = "preparing"
	StatusGettingQuote     StatusKind = "getting_quote"
	StatusAwaitingDeposit  StatusKind = "awaiting_deposit"
	StatusDepositSent      StatusKind = "deposit_sent"
	StatusSwapping         StatusKind = "swapping"
	StatusSwapCompleted    StatusKind = "swap_completed"
	StatusDepositingToPool StatusKind = "depositing_to_pool"
	StatusCompleted        StatusKind = "completed"
	StatusFailed           StatusKind = "failed"
)

// Status is one tagged state value. Only the fields for the given Kind are
// set.
type Status struct {
	Kind StatusKind

	SourceAsset      string // getting_quote
	DestinationAsset string // getting_quote
	DepositAddress   string // awaiting_deposit
	TxHash           string // deposit_sent, completed
	SwapState        string // swapping
	Err              error  // failed
}

// Terminal reports whether no further status can follow.
func (s Status) Terminal() bool {
	return s.Kind == StatusCompleted || s.Kind == StatusFailed
}

func (s Status) String() string {
	switch s.Kind {
	case StatusGettingQuote:
		return fmt.Sprintf("%s %s -> %s", s.Kind, s.SourceAsset, s.DestinationAsset)
	case StatusAwaitingDeposit:
		return fmt.Sprintf("%s at %s", s.Kind, s.DepositAddress)
	case StatusDepositSent, StatusCompleted:
		return fmt.Sprintf("%s tx %s", s.Kind, s.TxHash)
	case StatusSwapping:
		return fmt.Sprintf("%s (%s)", s.Kind, s.SwapState)
	case StatusFailed:
		return fmt.Sprintf("%s: %v", s.Kind, s.Err)
	default:
		return string(s.Kind)
	}
}

// Listener receives statuses synchronously, in order, for every transition
// of one funding attempt.
type Listener func(Status)

// StatusChannel adapts the push-style Listener to a pull-style channel so
// test harnesses and UIs can consume the same ordered sequence. The channel
// closes after a terminal status.
type StatusChannel struct {
	ch   chan Status
	once sync.Once
}

// NewStatusChannel returns a channel buffered for buffer statuses. A full
// happy-path attempt emits eight.
func NewStatusChannel(buffer int) *StatusChannel {
	if buffer <= 0 {
		buffer = 16
	}
	return &StatusChannel{ch: make(chan Status, buffer)}
}

// Listener returns the push side. It blocks if the buffer is full, so
// ordering is preserved even for slow consumers.
func (c *StatusChannel) Listener() Listener {
	return func(s Status) {
		c.ch <- s
		if s.Terminal() {
			c.once.Do(func() { close(c.ch) })
		}
	}
}

// Updates returns the pull side.
func (c *StatusChannel) Updates() <-chan Status {
	return c.ch
}
