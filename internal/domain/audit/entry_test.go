package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
)

func TestEntry_PreservesLog(t *testing.T) {
	l := &transaction.Log{
		ID:               uuid.New(),
		TransactionID:    uuid.New(),
		AccountID:        uuid.New(),
		Type:             shared.TransactionTypeDebit,
		Status:           shared.TransactionStatusFailed,
		Amount:           decimal.RequireFromString("100"),
		Currency:         "USD",
		ConvertedAmount:  decimal.RequireFromString("91.23"),
		WalletCurrency:   "EUR",
		BalanceBefore:    decimal.RequireFromString("3.5"),
		ResultingBalance: decimal.RequireFromString("3.5"),
		CreatedAt:        time.Now().UTC().Truncate(time.Millisecond),
	}

	e, err := NewEntry(l)
	require.NoError(t, err)
	assert.Equal(t, l.TransactionID.String(), e.TransactionID)
	assert.Equal(t, "100.00", e.Amount.String())
	assert.Equal(t, "3.50", e.ResultingBalance.String())

	back, err := e.Log()
	require.NoError(t, err)
	assert.Equal(t, l.ID, back.ID)
	assert.Equal(t, l.AccountID, back.AccountID)
	assert.True(t, l.ConvertedAmount.Equal(back.ConvertedAmount))
	assert.True(t, l.BalanceBefore.Equal(back.BalanceBefore))
	assert.Equal(t, l.Status, back.Status)
}

func TestEntry_LogRejectsBadIDs(t *testing.T) {
	e := &Entry{LogID: "nope"}

	_, err := e.Log()
	assert.Error(t, err)
}

func TestNewRejection(t *testing.T) {
	req := &shared.TransactionRequest{
		TransactionID: uuid.New(),
		AccountID:     uuid.New(),
		Type:          shared.TransactionTypeCredit,
		Amount:        decimal.RequireFromString("7.1"),
		Currency:      "JPY",
		CorrelationID: "corr",
	}

	r := NewRejection(req, "EUR", shared.RejectionReasonConversionFailed, errors.New("rate unavailable"))

	assert.Equal(t, "7.10", r.Amount)
	assert.Equal(t, AccountKey(req.AccountID), r.AccountID)
	assert.Equal(t, shared.RejectionReasonConversionFailed, r.Reason)
	assert.Equal(t, "rate unavailable", r.Detail)
	assert.Equal(t, "corr", r.CorrelationID)
}

func TestErrorMatching(t *testing.T) {
	id := uuid.New()
	assert.True(t, errors.Is(ErrEntryNotFound{TransactionID: id}, ErrEntryNotFound{}))
	assert.False(t, errors.Is(ErrEntryNotFound{TransactionID: id}, ErrEntryNotFound{TransactionID: uuid.New()}))
	assert.True(t, errors.Is(ErrDuplicateEntry{TransactionID: "x"}, ErrDuplicateEntry{}))
}
