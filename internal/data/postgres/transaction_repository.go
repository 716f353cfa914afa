package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/domain/transaction"
	"github.com/wallet-ledger/internal/platform/persistence"
)

const (
	transactionColumns = `id, account_id, type, amount::text, currency, status, resulting_balance::text,
		COALESCE(idempotency_key, ''), COALESCE(correlation_id, ''), created_at`

	insertTransactionSQL = `INSERT INTO transactions
		(id, account_id, type, amount, currency, status, resulting_balance, idempotency_key, correlation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10)`

	selectTransactionByIDSQL = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	selectTransactionByKeySQL = `SELECT ` + transactionColumns + ` FROM transactions WHERE idempotency_key = $1`

	listTransactionsSQL = `SELECT ` + transactionColumns + ` FROM transactions ORDER BY created_at, id LIMIT $1 OFFSET $2`

	countTransactionsSQL = `SELECT COUNT(*) FROM transactions`

	transactionsPKey           = "transactions_pkey"
	transactionsIdempotencyKey = "transactions_idempotency_key_key"
)

type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{querier: db.Pool(), logger: logger}
}

func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{querier: tx, logger: r.logger}
}

func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	_, err := r.querier.Exec(ctx, insertTransactionSQL,
		t.ID, t.AccountID, t.Type, t.Amount, t.Currency, t.Status, t.ResultingBalance,
		t.IdempotencyKey, t.CorrelationID, t.CreatedAt,
	)
	if err != nil {
		switch {
		case persistence.IsUniqueViolation(err, transactionsPKey):
			return transaction.ErrDuplicateTransaction{TransactionID: t.ID}
		case persistence.IsUniqueViolation(err, transactionsIdempotencyKey):
			return transaction.ErrDuplicateTransaction{TransactionID: t.ID, IdempotencyKey: t.IdempotencyKey}
		}
		r.logger.Error("failed to create transaction", "transaction_id", t.ID, "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	t, err := scanTransaction(r.querier.QueryRow(ctx, selectTransactionByIDSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("failed to get transaction", "transaction_id", id, "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// GetByIdempotencyKey returns nil, nil when no transaction carries the key.
func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*transaction.Transaction, error) {
	t, err := scanTransaction(r.querier.QueryRow(ctx, selectTransactionByKeySQL, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to get transaction by idempotency key", "idempotency_key", key, "error", err)
		return nil, fmt.Errorf("failed to get transaction by idempotency key: %w", err)
	}
	return t, nil
}

func (r *TransactionRepository) List(ctx context.Context, limit, offset int) ([]*transaction.Transaction, error) {
	rows, err := r.querier.Query(ctx, listTransactionsSQL, limit, offset)
	if err != nil {
		r.logger.Error("failed to list transactions", "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*transaction.Transaction, 0, limit)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}

func (r *TransactionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.querier.QueryRow(ctx, countTransactionsSQL).Scan(&n); err != nil {
		r.logger.Error("failed to count transactions", "error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

func scanTransaction(row pgx.Row) (*transaction.Transaction, error) {
	var (
		t               transaction.Transaction
		amount, balance string
	)
	err := row.Scan(&t.ID, &t.AccountID, &t.Type, &amount, &t.Currency, &t.Status, &balance,
		&t.IdempotencyKey, &t.CorrelationID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if t.Amount, err = parseMoney("amount", amount); err != nil {
		return nil, err
	}
	if t.ResultingBalance, err = parseMoney("resulting_balance", balance); err != nil {
		return nil, err
	}
	return &t, nil
}
