package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/domain/outbox"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/ledger/service"
)

// LedgerRecorderImpl writes the transaction row, its log entry and the outbox
// message that carries the entry to the audit archive.
type LedgerRecorderImpl struct {
	txRepo     transaction.Repository
	logRepo    transaction.LogRepository
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewLedgerRecorder(
	txRepo transaction.Repository,
	logRepo transaction.LogRepository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) service.LedgerRecorder {
	return &LedgerRecorderImpl{
		txRepo:     txRepo,
		logRepo:    logRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

func (r *LedgerRecorderImpl) Record(
	ctx context.Context,
	tx pgx.Tx,
	request *shared.TransactionRequest,
	decision wallet.Decision,
	converted decimal.Decimal,
	walletCurrency string,
) (*transaction.Log, error) {
	row, entry := transaction.Record(request, decision.Status, converted, walletCurrency,
		decision.BalanceBefore, decision.BalanceAfter)

	if err := r.txRepo.WithTx(tx).Create(ctx, row); err != nil {
		return nil, err
	}
	if err := r.logRepo.WithTx(tx).Append(ctx, entry); err != nil {
		return nil, err
	}

	message, err := outbox.NewMessage(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox payload for transaction %s: %w", request.TransactionID, err)
	}
	if err := r.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		return nil, err
	}

	r.logger.Debug("ledger entry recorded",
		"transaction_id", request.TransactionID.String(),
		"status", entry.Status,
		"outbox_id", message.ID,
	)
	return entry, nil
}
