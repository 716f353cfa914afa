package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
)

// WorkerPoolProcessingService bounds how many requests the engine runs at once.
type WorkerPoolProcessingService struct {
	baseService ProcessingService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

type poolResult struct {
	outcome *transaction.Outcome
	err     error
}

func NewWorkerPoolProcessingService(
	baseService ProcessingService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolProcessingService, error) {
	pool, err := ants.NewPool(config.Size, ants.WithExpiryDuration(time.Minute))
	if err != nil {
		return nil, err
	}

	return &WorkerPoolProcessingService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// ProcessTransaction runs the request on a pooled worker and waits for it.
// Submit blocks while every worker is busy. A panic in the engine is
// returned as an error.
//
// Once submitted, the request runs to a definite outcome: cancelling ctx
// neither aborts the commit nor stops the wait for its result.
func (s *WorkerPoolProcessingService) ProcessTransaction(ctx context.Context, request *shared.TransactionRequest) (*transaction.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resultChan := make(chan poolResult, 1)
	requestCopy := *request
	runCtx := context.WithoutCancel(ctx)

	err := s.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("ledger engine panicked", "transaction_id", requestCopy.TransactionID.String(), "panic", r)
				resultChan <- poolResult{err: fmt.Errorf("processing transaction %s: panic: %v", requestCopy.TransactionID, r)}
			}
		}()
		outcome, err := s.baseService.ProcessTransaction(runCtx, &requestCopy)
		resultChan <- poolResult{outcome: outcome, err: err}
	})
	if err != nil {
		s.logger.Error("failed to submit transaction to worker pool",
			"transaction_id", request.TransactionID.String(),
			"error", err,
		)
		return nil, err
	}

	res := <-resultChan
	return res.outcome, res.err
}

func (s *WorkerPoolProcessingService) Shutdown() {
	s.logger.Info("shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

func (s *WorkerPoolProcessingService) Running() int {
	return s.pool.Running()
}

func (s *WorkerPoolProcessingService) Capacity() int {
	return s.pool.Cap()
}
