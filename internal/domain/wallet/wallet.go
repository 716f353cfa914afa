// Package wallet holds the single-currency balance owned by an account.
package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/domain/shared"
)

// Wallet is the balance of one account. Version increases on every balance
// or currency write and is the compare-and-set token of the ledger engine.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// New returns an empty wallet for the account.
func New(accountID uuid.UUID, currency string) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:        uuid.New(),
		AccountID: accountID,
		Balance:   decimal.Zero,
		Currency:  currency,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Decision is what applying an amount to a balance would produce.
type Decision struct {
	Status         shared.TransactionStatus
	BalanceBefore  decimal.Decimal
	BalanceAfter   decimal.Decimal
	BalanceChanged bool
}

// Decide applies an amount already expressed in the wallet currency. A debit
// larger than the balance fails and leaves the balance as it is.
func (w *Wallet) Decide(t shared.TransactionType, amount decimal.Decimal) Decision {
	d := Decision{
		Status:        shared.TransactionStatusSuccess,
		BalanceBefore: w.Balance,
		BalanceAfter:  w.Balance,
	}

	switch t {
	case shared.TransactionTypeDebit:
		if w.Balance.LessThan(amount) {
			d.Status = shared.TransactionStatusFailed
			return d
		}
		d.BalanceAfter = w.Balance.Sub(amount)
	case shared.TransactionTypeCredit:
		d.BalanceAfter = w.Balance.Add(amount)
	}
	d.BalanceChanged = !d.BalanceAfter.Equal(d.BalanceBefore)
	return d
}
