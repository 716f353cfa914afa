package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wallet-ledger/internal/domain/audit"
	"github.com/wallet-ledger/internal/domain/outbox"
	"github.com/wallet-ledger/internal/domain/shared"
)

// ErrUndeliverable marks a message that can never be archived.
var ErrUndeliverable = errors.New("outbox message undeliverable")

// Archiver delivers one outbox message to the audit archive.
type Archiver interface {
	Archive(ctx context.Context, message *outbox.Message) error
}

type AuditArchiver struct {
	outboxRepo outbox.Repository
	auditRepo  audit.Repository
	logger     *slog.Logger
}

func NewAuditArchiver(outboxRepo outbox.Repository, auditRepo audit.Repository, logger *slog.Logger) *AuditArchiver {
	return &AuditArchiver{
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		logger:     logger,
	}
}

// Archive copies the carried log to MongoDB and marks the message PROCESSED.
// A log that is already archived counts as delivered, so a crash between the
// two writes only repeats the first one.
func (a *AuditArchiver) Archive(ctx context.Context, message *outbox.Message) error {
	logger := a.logger.With("outbox_id", message.ID, "transaction_id", message.TransactionID)

	entry, err := decodeEntry(message)
	if err != nil {
		logger.Error("outbox payload cannot be archived", "error", err)
		if updateErr := a.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			logger.Error("failed to mark undeliverable outbox message", "error", updateErr)
		}
		return fmt.Errorf("%w: %d: %v", ErrUndeliverable, message.ID, err)
	}

	if err := a.auditRepo.Archive(ctx, entry); err != nil {
		if !errors.Is(err, audit.ErrDuplicateEntry{}) {
			return fmt.Errorf("failed to archive transaction log %s: %w", message.TransactionID, err)
		}
		logger.Info("transaction log already archived")
	}

	if err := a.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		return fmt.Errorf("archived %s but failed to mark outbox %d as PROCESSED: %w", message.TransactionID, message.ID, err)
	}

	logger.Debug("outbox message archived")
	return nil
}

func decodeEntry(message *outbox.Message) (*audit.Entry, error) {
	l, err := message.Log()
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return audit.NewEntry(l)
}
