package shared

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits every stored amount carries.
const MoneyScale = 2

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// TransactionRequest asks the ledger engine to apply one debit or credit.
// It is also the Kafka message body of the asynchronous intake.
type TransactionRequest struct {
	TransactionID  uuid.UUID       `json:"transaction_id"`
	AccountID      uuid.UUID       `json:"account_id"`
	Type           TransactionType `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
	CorrelationID  string          `json:"correlation_id"`
	Timestamp      time.Time       `json:"timestamp"`
}

// Validate checks the request without touching any state.
func (r *TransactionRequest) Validate() error {
	if r.TransactionID == uuid.Nil {
		return fmt.Errorf("%w: transaction_id is required", ErrInvalidTransactionID)
	}
	if err := ValidateAmount(r.Amount); err != nil {
		return err
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, r.Type)
	}
	return ValidateCurrency(r.Currency)
}

// ValidateAmount rejects negative amounts and amounts finer than MoneyScale.
// Zero is accepted.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount)
	}
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, amount, MoneyScale)
	}
	return nil
}

// ValidateCurrency accepts three upper-case letters.
func ValidateCurrency(code string) error {
	err := validation.Validate(code, validation.Required, validation.Match(currencyPattern))
	if err != nil {
		return fmt.Errorf("%w: %q %v", ErrInvalidCurrency, code, err)
	}
	return nil
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
