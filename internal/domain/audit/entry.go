// Package audit describes the MongoDB archive of committed transaction logs
// and of requests rejected before they reached the ledger.
package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
)

// Entry is the archived copy of a transaction log.
type Entry struct {
	LogID            string                   `json:"log_id" bson:"log_id"`
	TransactionID    string                   `json:"transaction_id" bson:"transaction_id"`
	AccountID        string                   `json:"account_id" bson:"account_id"`
	Type             shared.TransactionType   `json:"type" bson:"type"`
	Status           shared.TransactionStatus `json:"status" bson:"status"`
	Amount           primitive.Decimal128     `json:"amount" bson:"amount"`
	Currency         string                   `json:"currency" bson:"currency"`
	ConvertedAmount  primitive.Decimal128     `json:"converted_amount" bson:"converted_amount"`
	WalletCurrency   string                   `json:"wallet_currency" bson:"wallet_currency"`
	BalanceBefore    primitive.Decimal128     `json:"balance_before" bson:"balance_before"`
	ResultingBalance primitive.Decimal128     `json:"resulting_balance" bson:"resulting_balance"`
	CreatedAt        time.Time                `json:"created_at" bson:"created_at"`
	ArchivedAt       time.Time                `json:"archived_at" bson:"archived_at"`
}

func NewEntry(l *transaction.Log) (*Entry, error) {
	e := &Entry{
		LogID:          l.ID.String(),
		TransactionID:  l.TransactionID.String(),
		AccountID:      l.AccountID.String(),
		Type:           l.Type,
		Status:         l.Status,
		Currency:       l.Currency,
		WalletCurrency: l.WalletCurrency,
		CreatedAt:      l.CreatedAt,
		ArchivedAt:     time.Now().UTC(),
	}
	var err error
	if e.Amount, err = toDecimal128(l.Amount); err != nil {
		return nil, err
	}
	if e.ConvertedAmount, err = toDecimal128(l.ConvertedAmount); err != nil {
		return nil, err
	}
	if e.BalanceBefore, err = toDecimal128(l.BalanceBefore); err != nil {
		return nil, err
	}
	if e.ResultingBalance, err = toDecimal128(l.ResultingBalance); err != nil {
		return nil, err
	}
	return e, nil
}

// Log converts the archived entry back to the ledger representation.
func (e *Entry) Log() (*transaction.Log, error) {
	l := &transaction.Log{
		Type:           e.Type,
		Status:         e.Status,
		Currency:       e.Currency,
		WalletCurrency: e.WalletCurrency,
		CreatedAt:      e.CreatedAt,
	}
	var err error
	if l.ID, err = uuid.Parse(e.LogID); err != nil {
		return nil, fmt.Errorf("log id: %w", err)
	}
	if l.TransactionID, err = uuid.Parse(e.TransactionID); err != nil {
		return nil, fmt.Errorf("transaction id: %w", err)
	}
	if l.AccountID, err = uuid.Parse(e.AccountID); err != nil {
		return nil, fmt.Errorf("account id: %w", err)
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		src primitive.Decimal128
	}{
		{&l.Amount, e.Amount},
		{&l.ConvertedAmount, e.ConvertedAmount},
		{&l.BalanceBefore, e.BalanceBefore},
		{&l.ResultingBalance, e.ResultingBalance},
	} {
		if *f.dst, err = fromDecimal128(f.src); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.StringFixed(shared.MoneyScale))
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert %s to decimal128: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("convert decimal128 %s: %w", v, err)
	}
	return d, nil
}
