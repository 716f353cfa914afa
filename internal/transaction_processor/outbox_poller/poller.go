package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/domain/outbox"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/platform/metrics"
)

// Poller drains pending outbox messages into the audit archive.
type Poller struct {
	outboxRepo       outbox.Repository
	archiver         Archiver
	metrics          *metrics.Metrics
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	archiver Archiver,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		archiver:         archiver,
		metrics:          m,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start polls until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("starting outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		if err := p.processPendingMessages(ctx); err != nil {
			p.logger.Error("outbox batch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			p.logger.Info("outbox poller stopped")
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}
	p.logger.Debug("fetched pending outbox messages", "count", len(messages))

	for _, msg := range messages {
		if ctx.Err() != nil {
			return nil
		}
		p.deliver(ctx, msg)
	}
	return nil
}

func (p *Poller) deliver(ctx context.Context, msg *outbox.Message) {
	logger := p.logger.With("outbox_id", msg.ID, "transaction_id", msg.TransactionID)

	err := p.archiver.Archive(ctx, msg)
	if err == nil {
		p.metrics.OutboxMessage("archived")
		return
	}
	if errors.Is(err, ErrUndeliverable) {
		p.metrics.OutboxMessage("failed")
		return
	}

	logger.Error("failed to archive outbox message", "attempts", msg.Attempts, "error", err)
	if err := p.outboxRepo.IncrementAttempts(ctx, msg.ID); err != nil {
		logger.Error("failed to increment outbox attempts", "error", err)
		return
	}
	msg.RecordAttempt()

	if !msg.Exhausted(p.maxRetryAttempts) {
		p.metrics.OutboxMessage("retry")
		return
	}
	logger.Warn("outbox message out of attempts, marking FAILED_TO_PUBLISH", "attempts", msg.Attempts)
	if err := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); err != nil {
		logger.Error("failed to mark outbox message FAILED_TO_PUBLISH", "error", err)
		return
	}
	p.metrics.OutboxMessage("failed")
}
