package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/platform/metrics"
	"github.com/wallet-ledger/internal/platform/persistence"
)

// RetryConfig bounds the optimistic commit loop.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type ProcessingServiceImpl struct {
	db         persistence.TxBeginner
	validator  TransactionValidator
	converter  CurrencyConverter
	wallets    WalletManager
	recorder   LedgerRecorder
	rejections RejectionRecorder // nil when rejections are not archived
	metrics    *metrics.Metrics
	retry      RetryConfig
	logger     *slog.Logger
}

func NewProcessingService(
	db persistence.TxBeginner,
	validator TransactionValidator,
	converter CurrencyConverter,
	wallets WalletManager,
	recorder LedgerRecorder,
	rejections RejectionRecorder,
	m *metrics.Metrics,
	retry RetryConfig,
	logger *slog.Logger,
) *ProcessingServiceImpl {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &ProcessingServiceImpl{
		db:         db,
		validator:  validator,
		converter:  converter,
		wallets:    wallets,
		recorder:   recorder,
		rejections: rejections,
		metrics:    m,
		retry:      retry,
		logger:     logger,
	}
}

// ProcessTransaction validates, converts and commits one request.
//
// Insufficient funds is a failed outcome, not an error. Errors mean nothing
// was written: validation errors, shared.ErrIdempotencyConflict, wallet.ErrWalletNotFound,
// shared.ErrConversionFailed, shared.ErrRetriesExhausted, or an
// infrastructure failure.
func (s *ProcessingServiceImpl) ProcessTransaction(ctx context.Context, request *shared.TransactionRequest) (*transaction.Outcome, error) {
	logger := s.logger.With("transaction_id", request.TransactionID.String(), "account_id", request.AccountID.String())
	if request.CorrelationID != "" {
		logger = logger.With("correlation_id", request.CorrelationID)
	}

	if err := s.validator.Validate(ctx, request); err != nil {
		logger.Warn("transaction rejected", "reason", shared.RejectionReasonInvalidRequest, "error", err)
		s.metrics.TransactionRejected(string(shared.RejectionReasonInvalidRequest))
		return nil, err
	}

	prior, err := s.validator.FindProcessed(ctx, request)
	if err != nil {
		s.rejectDuplicate(logger, err)
		return nil, err
	}
	if prior != nil {
		logger.Info("transaction already processed, returning stored outcome", "status", prior.Status)
		return prior, nil
	}

	// Conversions survive retries; only the wallet currency can change between attempts.
	converted := make(map[string]decimal.Decimal, 1)
	attempts := 0

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retry.InitialInterval
	b.MaxInterval = s.retry.MaxInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.retry.MaxAttempts-1)), ctx)

	outcome, err := backoff.RetryNotifyWithData(func() (*transaction.Outcome, error) {
		attempts++
		out, err := s.attempt(ctx, logger, request, converted)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, wallet.ErrConcurrentModification{}) {
			s.metrics.CommitConflict()
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}, policy, func(err error, wait time.Duration) {
		logger.Debug("wallet changed during commit, retrying", "attempt", attempts, "wait", wait)
	})
	if err != nil {
		if errors.Is(err, wallet.ErrConcurrentModification{}) {
			logger.Warn("giving up on contended wallet", "attempts", attempts)
			return nil, shared.ErrRetriesExhausted{AccountID: request.AccountID, Attempts: attempts}
		}
		s.rejectDuplicate(logger, err)
		return nil, err
	}

	s.metrics.TransactionProcessed(string(request.Type), string(outcome.Status))
	logger.Info("transaction processed",
		"status", outcome.Status,
		"resulting_balance", outcome.ResultingBalance.StringFixed(shared.MoneyScale),
		"attempts", attempts,
	)
	return outcome, nil
}

func (s *ProcessingServiceImpl) attempt(
	ctx context.Context,
	logger *slog.Logger,
	request *shared.TransactionRequest,
	converted map[string]decimal.Decimal,
) (*transaction.Outcome, error) {
	w, err := s.wallets.Load(ctx, request.AccountID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound{}) {
			s.metrics.TransactionRejected(string(shared.RejectionReasonWalletNotFound))
		}
		return nil, err
	}

	amount, ok := converted[w.Currency]
	if !ok {
		amount, err = s.converter.Convert(ctx, request.Amount, request.Currency, w.Currency)
		if err != nil {
			convErr := shared.ErrConversionFailed{From: request.Currency, To: w.Currency, Err: err}
			s.reject(ctx, logger, request, w.Currency, convErr)
			return nil, convErr
		}
		converted[w.Currency] = amount
	}

	decision := w.Decide(request.Type, amount)

	var entry *transaction.Log
	err = persistence.ExecuteTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.wallets.Apply(ctx, tx, w, decision); err != nil {
			return err
		}
		entry, err = s.recorder.Record(ctx, tx, request, decision, amount, w.Currency)
		return err
	})
	if err != nil {
		if errors.Is(err, transaction.ErrDuplicateTransaction{}) {
			// Another worker committed the same request first.
			prior, findErr := s.validator.FindProcessed(ctx, request)
			if findErr != nil {
				return nil, findErr
			}
			if prior != nil {
				return prior, nil
			}
		}
		return nil, err
	}

	out := entry.Outcome()
	return &out, nil
}

// rejectDuplicate records err when it is an idempotency conflict.
func (s *ProcessingServiceImpl) rejectDuplicate(logger *slog.Logger, err error) {
	if !errors.Is(err, shared.ErrIdempotencyConflict{}) {
		return
	}
	logger.Warn("transaction rejected", "reason", shared.RejectionReasonDuplicateRequest, "error", err)
	s.metrics.TransactionRejected(string(shared.RejectionReasonDuplicateRequest))
}

func (s *ProcessingServiceImpl) reject(ctx context.Context, logger *slog.Logger, request *shared.TransactionRequest,
	walletCurrency string, cause error) {
	logger.Warn("transaction rejected", "reason", shared.RejectionReasonConversionFailed, "error", cause)
	s.metrics.TransactionRejected(string(shared.RejectionReasonConversionFailed))
	if s.rejections == nil {
		return
	}
	if err := s.rejections.RecordRejection(ctx, request, walletCurrency, shared.RejectionReasonConversionFailed, cause); err != nil {
		logger.Error("failed to record rejection", "error", err)
	}
}
