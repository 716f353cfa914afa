package components

import (
	"context"
	"log/slog"

	"github.com/wallet-ledger/internal/domain/audit"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/ledger/service"
)

// RejectionRecorderImpl stores refused requests in the audit archive. They are
// kept apart from transaction logs, which only describe processed requests.
type RejectionRecorderImpl struct {
	auditRepo audit.Repository
	logger    *slog.Logger
}

func NewRejectionRecorder(auditRepo audit.Repository, logger *slog.Logger) service.RejectionRecorder {
	return &RejectionRecorderImpl{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (r *RejectionRecorderImpl) RecordRejection(
	ctx context.Context,
	request *shared.TransactionRequest,
	walletCurrency string,
	reason shared.RejectionReason,
	cause error,
) error {
	rejection := audit.NewRejection(request, walletCurrency, reason, cause)
	if err := r.auditRepo.RecordRejection(ctx, rejection); err != nil {
		return err
	}
	r.logger.Info("rejection recorded", "transaction_id", rejection.TransactionID, "reason", reason)
	return nil
}
