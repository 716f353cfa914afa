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
	logColumns = `id, transaction_id, account_id, type, status, amount::text, currency,
		converted_amount::text, wallet_currency, balance_before::text, resulting_balance::text, created_at`

	appendLogSQL = `INSERT INTO transaction_logs
		(id, transaction_id, account_id, type, status, amount, currency,
		 converted_amount, wallet_currency, balance_before, resulting_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	selectLogByTransactionSQL = `SELECT ` + logColumns + ` FROM transaction_logs WHERE transaction_id = $1`

	listLogsByAccountSQL = `SELECT ` + logColumns + ` FROM transaction_logs
		WHERE account_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`

	countLogsByAccountSQL = `SELECT COUNT(*) FROM transaction_logs WHERE account_id = $1`

	listLogsSQL = `SELECT ` + logColumns + ` FROM transaction_logs ORDER BY created_at, id LIMIT $1 OFFSET $2`

	countLogsSQL = `SELECT COUNT(*) FROM transaction_logs`

	logTransactionKey = "transaction_logs_transaction_id_key"
)

// TransactionLogRepository only ever inserts; the table rejects UPDATE.
type TransactionLogRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewTransactionLogRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.LogRepository {
	return &TransactionLogRepository{querier: db.Pool(), logger: logger}
}

func (r *TransactionLogRepository) WithTx(tx pgx.Tx) transaction.LogRepository {
	return &TransactionLogRepository{querier: tx, logger: r.logger}
}

func (r *TransactionLogRepository) Append(ctx context.Context, l *transaction.Log) error {
	_, err := r.querier.Exec(ctx, appendLogSQL,
		l.ID, l.TransactionID, l.AccountID, l.Type, l.Status, l.Amount, l.Currency,
		l.ConvertedAmount, l.WalletCurrency, l.BalanceBefore, l.ResultingBalance, l.CreatedAt,
	)
	if err != nil {
		if persistence.IsUniqueViolation(err, logTransactionKey) {
			return transaction.ErrDuplicateTransaction{TransactionID: l.TransactionID}
		}
		r.logger.Error("failed to append transaction log", "transaction_id", l.TransactionID, "error", err)
		return fmt.Errorf("failed to append transaction log: %w", err)
	}
	return nil
}

func (r *TransactionLogRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*transaction.Log, error) {
	l, err := scanLog(r.querier.QueryRow(ctx, selectLogByTransactionSQL, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: transactionID}
		}
		r.logger.Error("failed to get transaction log", "transaction_id", transactionID, "error", err)
		return nil, fmt.Errorf("failed to get transaction log: %w", err)
	}
	return l, nil
}

func (r *TransactionLogRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*transaction.Log, error) {
	return r.list(ctx, listLogsByAccountSQL, limit, accountID, limit, offset)
}

func (r *TransactionLogRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return r.count(ctx, countLogsByAccountSQL, accountID)
}

func (r *TransactionLogRepository) List(ctx context.Context, limit, offset int) ([]*transaction.Log, error) {
	return r.list(ctx, listLogsSQL, limit, limit, offset)
}

func (r *TransactionLogRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, countLogsSQL)
}

func (r *TransactionLogRepository) list(ctx context.Context, sql string, capacity int, args ...interface{}) ([]*transaction.Log, error) {
	rows, err := r.querier.Query(ctx, sql, args...)
	if err != nil {
		r.logger.Error("failed to list transaction logs", "error", err)
		return nil, fmt.Errorf("failed to list transaction logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*transaction.Log, 0, capacity)
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction logs: %w", err)
	}
	return logs, nil
}

func (r *TransactionLogRepository) count(ctx context.Context, sql string, args ...interface{}) (int64, error) {
	var n int64
	if err := r.querier.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		r.logger.Error("failed to count transaction logs", "error", err)
		return 0, fmt.Errorf("failed to count transaction logs: %w", err)
	}
	return n, nil
}

func scanLog(row pgx.Row) (*transaction.Log, error) {
	var (
		l                                    transaction.Log
		amount, converted, before, resulting string
	)
	err := row.Scan(&l.ID, &l.TransactionID, &l.AccountID, &l.Type, &l.Status, &amount, &l.Currency,
		&converted, &l.WalletCurrency, &before, &resulting, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	if l.Amount, err = parseMoney("amount", amount); err != nil {
		return nil, err
	}
	if l.ConvertedAmount, err = parseMoney("converted_amount", converted); err != nil {
		return nil, err
	}
	if l.BalanceBefore, err = parseMoney("balance_before", before); err != nil {
		return nil, err
	}
	if l.ResultingBalance, err = parseMoney("resulting_balance", resulting); err != nil {
		return nil, err
	}
	return &l, nil
}
