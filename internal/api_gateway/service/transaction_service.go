package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
	"github.com/wallet-ledger/internal/domain/wallet"
	ledger "github.com/wallet-ledger/internal/ledger/service"
	"github.com/wallet-ledger/internal/platform/messaging/producers"
)

type TransactionServiceImpl struct {
	engine     ledger.ProcessingService
	publisher  producers.RequestPublisher
	txRepo     transaction.Repository
	logRepo    transaction.LogRepository
	walletRepo wallet.Repository
	logger     *slog.Logger
}

func NewTransactionService(
	engine ledger.ProcessingService,
	publisher producers.RequestPublisher,
	txRepo transaction.Repository,
	logRepo transaction.LogRepository,
	walletRepo wallet.Repository,
	logger *slog.Logger,
) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		engine:     engine,
		publisher:  publisher,
		txRepo:     txRepo,
		logRepo:    logRepo,
		walletRepo: walletRepo,
		logger:     logger,
	}
}

func (s *TransactionServiceImpl) ProcessTransaction(ctx context.Context, req *shared.TransactionRequest) (*transaction.Outcome, error) {
	return s.engine.ProcessTransaction(ctx, req)
}

// SubmitTransaction validates the request up front so that the queue only
// carries requests the processor can decide on.
func (s *TransactionServiceImpl) SubmitTransaction(ctx context.Context, req *shared.TransactionRequest) error {
	req.Currency = shared.NormalizeCurrency(req.Currency)
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := s.walletRepo.GetByAccountID(ctx, req.AccountID); err != nil {
		return err
	}
	if err := s.publisher.PublishRequest(ctx, req); err != nil {
		return fmt.Errorf("failed to submit transaction %s: %w", req.TransactionID, err)
	}
	s.logger.Info("transaction submitted", "transaction_id", req.TransactionID, "account_id", req.AccountID)
	return nil
}

func (s *TransactionServiceImpl) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return s.txRepo.GetByID(ctx, id)
}

func (s *TransactionServiceImpl) ListTransactions(ctx context.Context, limit, offset int) ([]*transaction.Transaction, int64, error) {
	txs, err := s.txRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.txRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// ListAccountLogs returns the account's log entries oldest first.
func (s *TransactionServiceImpl) ListAccountLogs(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*transaction.Log, int64, error) {
	if _, err := s.walletRepo.GetByAccountID(ctx, accountID); err != nil {
		return nil, 0, err
	}
	logs, err := s.logRepo.ListByAccountID(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.logRepo.CountByAccountID(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (s *TransactionServiceImpl) ListLogs(ctx context.Context, limit, offset int) ([]*transaction.Log, int64, error) {
	logs, err := s.logRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.logRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

var _ TransactionService = (*TransactionServiceImpl)(nil)
