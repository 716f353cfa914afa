package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/ledger/service"
	"github.com/wallet-ledger/internal/platform/messaging/producers"
)

// TransactionEventHandler feeds transaction request messages to the ledger engine.
type TransactionEventHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

func NewTransactionEventHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *TransactionEventHandler {
	return &TransactionEventHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage returns nil when the message is done with: applied, replayed,
// decided as failed, or dead-lettered. An error asks the consumer to deliver
// the same message again.
func (h *TransactionEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.TransactionRequest
	if err := json.Unmarshal(value, &request); err != nil {
		h.logger.Error("failed to decode transaction request", "message_key", string(key), "error", err)
		return h.deadLetter(ctx, key, value, shared.RejectionReasonMalformedMessage, err)
	}

	logger := h.logger.With("transaction_id", request.TransactionID.String(), "account_id", request.AccountID.String())
	if request.CorrelationID != "" {
		logger = logger.With("correlation_id", request.CorrelationID)
	}
	logger.Info("processing transaction request", "type", request.Type, "amount", request.Amount, "currency", request.Currency)

	outcome, err := h.processingService.ProcessTransaction(ctx, &request)
	if err != nil {
		if reason, ok := permanentReason(err); ok {
			logger.Warn("transaction request cannot be applied", "reason", reason, "error", err)
			return h.deadLetter(ctx, key, value, reason, err)
		}
		logger.Error("failed to process transaction", "error", err)
		return fmt.Errorf("processing transaction %s failed: %w", request.TransactionID, err)
	}

	logger.Info("transaction processed", "status", outcome.Status, "resulting_balance", outcome.ResultingBalance)
	return nil
}

// permanentReason classifies errors that redelivery will never fix.
func permanentReason(err error) (shared.RejectionReason, bool) {
	switch {
	case shared.IsValidationError(err):
		return shared.RejectionReasonInvalidRequest, true
	case errors.Is(err, wallet.ErrWalletNotFound{}):
		return shared.RejectionReasonWalletNotFound, true
	case errors.Is(err, shared.ErrConversionFailed{}):
		return shared.RejectionReasonConversionFailed, true
	case errors.Is(err, shared.ErrIdempotencyConflict{}):
		return shared.RejectionReasonDuplicateRequest, true
	}
	return "", false
}

func (h *TransactionEventHandler) deadLetter(ctx context.Context, key, value []byte, reason shared.RejectionReason, cause error) error {
	if h.producer == nil {
		h.logger.Warn("dropping message, no DLQ configured", "message_key", string(key), "reason", reason)
		return nil
	}
	if err := h.producer.PublishToDLQ(ctx, string(key), value, string(reason)); err != nil {
		return fmt.Errorf("failed to dead-letter message (%s: %v): %w", reason, cause, err)
	}
	return nil
}
