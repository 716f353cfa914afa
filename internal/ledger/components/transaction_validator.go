package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
	"github.com/wallet-ledger/internal/ledger/service"
)

type TransactionValidatorImpl struct {
	txRepo  transaction.Repository
	logRepo transaction.LogRepository
	logger  *slog.Logger
}

func NewTransactionValidator(txRepo transaction.Repository, logRepo transaction.LogRepository, logger *slog.Logger) service.TransactionValidator {
	return &TransactionValidatorImpl{
		txRepo:  txRepo,
		logRepo: logRepo,
		logger:  logger,
	}
}

// Validate normalizes the currency code, then checks the request.
func (v *TransactionValidatorImpl) Validate(_ context.Context, request *shared.TransactionRequest) error {
	request.Currency = shared.NormalizeCurrency(request.Currency)
	return request.Validate()
}

// FindProcessed looks the request up by transaction id, then by idempotency key.
// A match recorded for a different account, type, amount or currency is an
// shared.ErrIdempotencyConflict.
func (v *TransactionValidatorImpl) FindProcessed(ctx context.Context, request *shared.TransactionRequest) (*transaction.Outcome, error) {
	entry, err := v.logRepo.GetByTransactionID(ctx, request.TransactionID)
	switch {
	case err == nil:
		return v.replay(request, entry, "")
	case !errors.Is(err, transaction.ErrTransactionNotFound{}):
		return nil, fmt.Errorf("idempotency check failed for transaction %s: %w", request.TransactionID, err)
	}

	if request.IdempotencyKey == "" {
		return nil, nil
	}

	prior, err := v.txRepo.GetByIdempotencyKey(ctx, request.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed for key %q: %w", request.IdempotencyKey, err)
	}
	if prior == nil {
		return nil, nil
	}

	entry, err = v.logRepo.GetByTransactionID(ctx, prior.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load log of transaction %s: %w", prior.ID, err)
	}
	v.logger.Info("idempotency key already used",
		"idempotency_key", request.IdempotencyKey,
		"original_transaction_id", prior.ID.String(),
	)
	return v.replay(request, entry, request.IdempotencyKey)
}

func (v *TransactionValidatorImpl) replay(request *shared.TransactionRequest, entry *transaction.Log, key string) (*transaction.Outcome, error) {
	if field := mismatch(request, entry); field != "" {
		v.logger.Warn("request does not match the processed transaction",
			"transaction_id", entry.TransactionID.String(),
			"idempotency_key", key,
			"field", field,
		)
		return nil, shared.ErrIdempotencyConflict{TransactionID: entry.TransactionID, IdempotencyKey: key, Field: field}
	}
	out := entry.Outcome()
	return &out, nil
}

// mismatch names the first field in which request differs from the logged one.
func mismatch(request *shared.TransactionRequest, entry *transaction.Log) string {
	switch {
	case request.AccountID != entry.AccountID:
		return "account_id"
	case request.Type != entry.Type:
		return "type"
	case !request.Amount.Equal(entry.Amount):
		return "amount"
	case request.Currency != entry.Currency:
		return "currency"
	}
	return ""
}
