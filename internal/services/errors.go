package services

import (
	"errors"
	"fmt"
	"time"
)

// State-conflict errors are part of the service contract: handlers and
// scanner UIs branch on them, so they are sentinels rather than opaque
// failures.
// ErrInvalidInput marks malformed requests caught before any shared state
// is touched. Wrap with fmt.Errorf("%w: ...", ErrInvalidInput).
var ErrInvalidInput = errors.New("invalid input")

var (
	ErrTicketTypeNotFound       = errors.New("ticket type not found")
	ErrInsufficientAvailability = errors.New("insufficient availability")
	ErrPerOrderLimitExceeded    = errors.New("per-order limit exceeded")
	ErrSaleNotActive            = errors.New("ticket type not on sale")
	ErrOrderNotFound            = errors.New("order not found")
	ErrOrderNotPending          = errors.New("order not payable")
	ErrOrderNotPaid             = errors.New("order not paid")
	ErrNotOrderOwner            = errors.New("not order owner")
	ErrInvalidTicket            = errors.New("invalid ticket")
	ErrWrongEvent               = errors.New("wrong event")
	ErrTicketCancelled          = errors.New("ticket cancelled")
	ErrAlreadyCheckedIn         = errors.New("already checked in")
	ErrEventNotFound            = errors.New("event not found")
)

// AlreadyCheckedInError carries the original check-in timestamp so scanners
// can show when the ticket was first redeemed. errors.Is matches it against
// ErrAlreadyCheckedIn.
type AlreadyCheckedInError struct {
	At time.Time
}

func (e *AlreadyCheckedInError) Error() string {
	return fmt.Sprintf("already checked in at %s", e.At.Format(time.RFC3339))
}

func (e *AlreadyCheckedInError) Is(target error) bool {
	return target == ErrAlreadyCheckedIn
}
