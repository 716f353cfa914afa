package shared

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransactionID   = errors.New("invalid transaction id")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidCurrency        = errors.New("invalid currency")
)

// ErrConversionFailed means the request amount could not be expressed in the
// wallet currency. Nothing was written to the ledger.
type ErrConversionFailed struct {
	From string
	To   string
	Err  error
}

func (e ErrConversionFailed) Error() string {
	return fmt.Sprintf("currency conversion %s->%s failed: %v", e.From, e.To, e.Err)
}

func (e ErrConversionFailed) Unwrap() error { return e.Err }

// Is matches any ErrConversionFailed so callers can test with a zero value.
func (e ErrConversionFailed) Is(target error) bool {
	_, ok := target.(ErrConversionFailed)
	return ok
}

// ErrRetriesExhausted means every commit attempt lost a race with another
// writer. The request is safe to resubmit.
type ErrRetriesExhausted struct {
	AccountID uuid.UUID
	Attempts  int
}

func (e ErrRetriesExhausted) Error() string {
	return fmt.Sprintf("wallet for account %s too contended: gave up after %d attempts", e.AccountID, e.Attempts)
}

func (e ErrRetriesExhausted) Is(target error) bool {
	_, ok := target.(ErrRetriesExhausted)
	return ok
}

// ErrIdempotencyConflict means a transaction id or idempotency key is already
// bound to a different request: another account, or another type, amount or
// currency. The stored outcome is not returned.
type ErrIdempotencyConflict struct {
	TransactionID  uuid.UUID
	IdempotencyKey string
	Field          string
}

func (e ErrIdempotencyConflict) Error() string {
	if e.IdempotencyKey != "" {
		return fmt.Sprintf("idempotency key %q already used by transaction %s with a different %s", e.IdempotencyKey, e.TransactionID, e.Field)
	}
	return fmt.Sprintf("transaction %s already processed with a different %s", e.TransactionID, e.Field)
}

func (e ErrIdempotencyConflict) Is(target error) bool {
	_, ok := target.(ErrIdempotencyConflict)
	return ok
}

// IsValidationError reports whether err is an input error detected before any
// state was read.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidTransactionID) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidTransactionType) ||
		errors.Is(err, ErrInvalidCurrency)
}
