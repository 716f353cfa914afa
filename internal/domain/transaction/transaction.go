// Package transaction models processed ledger requests and their immutable log.
package transaction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/domain/shared"
)

// Transaction is one processed request. It is written once, in the same
// database transaction as its Log, and never updated.
type Transaction struct {
	ID               uuid.UUID                `json:"id"`
	AccountID        uuid.UUID                `json:"account_id"`
	Type             shared.TransactionType   `json:"type"`
	Amount           decimal.Decimal          `json:"amount"`
	Currency         string                   `json:"currency"`
	Status           shared.TransactionStatus `json:"status"`
	ResultingBalance decimal.Decimal          `json:"resulting_balance"`
	IdempotencyKey   string                   `json:"idempotency_key,omitempty"`
	CorrelationID    string                   `json:"correlation_id,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
}

// Log is the audit record of a processed transaction. Amount and Currency are
// as requested; ConvertedAmount is what was applied to the wallet.
type Log struct {
	ID               uuid.UUID                `json:"id"`
	TransactionID    uuid.UUID                `json:"transaction_id"`
	AccountID        uuid.UUID                `json:"account_id"`
	Type             shared.TransactionType   `json:"type"`
	Status           shared.TransactionStatus `json:"status"`
	Amount           decimal.Decimal          `json:"amount"`
	Currency         string                   `json:"currency"`
	ConvertedAmount  decimal.Decimal          `json:"converted_amount"`
	WalletCurrency   string                   `json:"wallet_currency"`
	BalanceBefore    decimal.Decimal          `json:"balance_before"`
	ResultingBalance decimal.Decimal          `json:"resulting_balance"`
	CreatedAt        time.Time                `json:"created_at"`
}

// Outcome is what the ledger engine returns for a processed request.
type Outcome struct {
	TransactionID    uuid.UUID                `json:"transaction_id"`
	Status           shared.TransactionStatus `json:"status"`
	ResultingBalance decimal.Decimal          `json:"resulting_balance"`
	ConvertedAmount  decimal.Decimal          `json:"converted_amount"`
	WalletCurrency   string                   `json:"wallet_currency"`
}

// Record builds the Transaction and Log rows for a decided request.
func Record(req *shared.TransactionRequest, status shared.TransactionStatus, converted decimal.Decimal,
	walletCurrency string, before, after decimal.Decimal) (*Transaction, *Log) {
	now := time.Now().UTC()
	amount := req.Amount.Round(shared.MoneyScale)
	tx := &Transaction{
		ID:               req.TransactionID,
		AccountID:        req.AccountID,
		Type:             req.Type,
		Amount:           amount,
		Currency:         req.Currency,
		Status:           status,
		ResultingBalance: after,
		IdempotencyKey:   req.IdempotencyKey,
		CorrelationID:    req.CorrelationID,
		CreatedAt:        now,
	}
	log := &Log{
		ID:               uuid.New(),
		TransactionID:    req.TransactionID,
		AccountID:        req.AccountID,
		Type:             req.Type,
		Status:           status,
		Amount:           amount,
		Currency:         req.Currency,
		ConvertedAmount:  converted,
		WalletCurrency:   walletCurrency,
		BalanceBefore:    before,
		ResultingBalance: after,
		CreatedAt:        now,
	}
	return tx, log
}

func (l *Log) Outcome() Outcome {
	return Outcome{
		TransactionID:    l.TransactionID,
		Status:           l.Status,
		ResultingBalance: l.ResultingBalance,
		ConvertedAmount:  l.ConvertedAmount,
		WalletCurrency:   l.WalletCurrency,
	}
}

// Summary renders the entry in one human readable line, amounts at two decimals.
func (l *Log) Summary() string {
	s := fmt.Sprintf("%s %s %s %s", l.Type, l.Amount.StringFixed(shared.MoneyScale), l.Currency, l.Status)
	if l.Currency != l.WalletCurrency {
		s += fmt.Sprintf(" (%s %s)", l.ConvertedAmount.StringFixed(shared.MoneyScale), l.WalletCurrency)
	}
	return s + fmt.Sprintf(", balance %s %s", l.ResultingBalance.StringFixed(shared.MoneyScale), l.WalletCurrency)
}
