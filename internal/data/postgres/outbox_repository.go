package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/domain/outbox"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/platform/persistence"
)

const (
	insertOutboxSQL = `INSERT INTO transaction_outbox (transaction_id, account_id, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	selectPendingOutboxSQL = `SELECT id, transaction_id, account_id, payload, status, attempts, created_at, last_attempt_at
		FROM transaction_outbox
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2`

	updateOutboxStatusSQL = `UPDATE transaction_outbox SET status = $1, last_attempt_at = $2 WHERE id = $3`

	incrementOutboxAttemptsSQL = `UPDATE transaction_outbox SET attempts = attempts + 1, last_attempt_at = $1 WHERE id = $2`
)

type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
	now     func() time.Time
}

func NewOutboxRepository(logger *slog.Logger, db *persistence.PostgresDB) outbox.Repository {
	return &OutboxRepository{querier: db.Pool(), logger: logger, now: utcNow}
}

func (r *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return &OutboxRepository{querier: tx, logger: r.logger, now: r.now}
}

// Create stores a pending message and sets its generated ID.
func (r *OutboxRepository) Create(ctx context.Context, m *outbox.Message) error {
	err := r.querier.QueryRow(ctx, insertOutboxSQL,
		m.TransactionID, m.AccountID, m.Payload, m.Status, m.Attempts, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		r.logger.Error("failed to create outbox message", "transaction_id", m.TransactionID, "error", err)
		return fmt.Errorf("failed to create outbox message: %w", err)
	}
	return nil
}

func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	rows, err := r.querier.Query(ctx, selectPendingOutboxSQL, shared.OutboxStatusPending, limit)
	if err != nil {
		r.logger.Error("failed to get pending outbox messages", "error", err)
		return nil, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*outbox.Message
	for rows.Next() {
		var m outbox.Message
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.AccountID, &m.Payload, &m.Status,
			&m.Attempts, &m.CreatedAt, &m.LastAttemptAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox messages: %w", err)
	}
	return messages, nil
}

func (r *OutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	tag, err := r.querier.Exec(ctx, updateOutboxStatusSQL, status, r.now(), id)
	if err != nil {
		r.logger.Error("failed to update outbox message status", "id", id, "status", status, "error", err)
		return fmt.Errorf("failed to update outbox message status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}

func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	tag, err := r.querier.Exec(ctx, incrementOutboxAttemptsSQL, r.now(), id)
	if err != nil {
		r.logger.Error("failed to increment outbox attempts", "id", id, "error", err)
		return fmt.Errorf("failed to increment outbox attempts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}

func utcNow() time.Time { return time.Now().UTC() }
