// Package postgres implements the domain repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/domain/account"
	"github.com/wallet-ledger/internal/platform/persistence"
)

const (
	accountColumns = `id, first_name, last_name, email, date_of_birth, preferred_currency, created_at, updated_at`

	insertAccountSQL = `INSERT INTO accounts (` + accountColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	selectAccountByIDSQL = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	listAccountsSQL = `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at, id LIMIT $1 OFFSET $2`

	countAccountsSQL = `SELECT COUNT(*) FROM accounts`

	updateAccountSQL = `UPDATE accounts
		SET first_name = $1, last_name = $2, email = $3, date_of_birth = $4, preferred_currency = $5, updated_at = $6
		WHERE id = $7`

	deleteAccountSQL = `DELETE FROM accounts WHERE id = $1`

	emailConstraint = "accounts_email_key"
)

type AccountRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{querier: db.Pool(), logger: logger}
}

func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{querier: tx, logger: r.logger}
}

func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	_, err := r.querier.Exec(ctx, insertAccountSQL,
		acc.ID, acc.FirstName, acc.LastName, acc.Email, acc.DateOfBirth,
		acc.PreferredCurrency, acc.CreatedAt, acc.UpdatedAt,
	)
	if err != nil {
		if persistence.IsUniqueViolation(err, emailConstraint) {
			return account.ErrDuplicateEmail{Email: acc.Email}
		}
		r.logger.Error("failed to create account", "account_id", acc.ID, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	acc, err := scanAccount(r.querier.QueryRow(ctx, selectAccountByIDSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("failed to get account", "account_id", id, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*account.Account, error) {
	rows, err := r.querier.Query(ctx, listAccountsSQL, limit, offset)
	if err != nil {
		r.logger.Error("failed to list accounts", "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*account.Account, 0, limit)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.querier.QueryRow(ctx, countAccountsSQL).Scan(&n); err != nil {
		r.logger.Error("failed to count accounts", "error", err)
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return n, nil
}

func (r *AccountRepository) Update(ctx context.Context, acc *account.Account) error {
	tag, err := r.querier.Exec(ctx, updateAccountSQL,
		acc.FirstName, acc.LastName, acc.Email, acc.DateOfBirth,
		acc.PreferredCurrency, acc.UpdatedAt, acc.ID,
	)
	if err != nil {
		if persistence.IsUniqueViolation(err, emailConstraint) {
			return account.ErrDuplicateEmail{Email: acc.Email}
		}
		r.logger.Error("failed to update account", "account_id", acc.ID, "error", err)
		return fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountID: acc.ID}
	}
	return nil
}

// Delete removes the account; the schema cascades to wallet, transactions and logs.
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.querier.Exec(ctx, deleteAccountSQL, id)
	if err != nil {
		r.logger.Error("failed to delete account", "account_id", id, "error", err)
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountID: id}
	}
	return nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.ID, &acc.FirstName, &acc.LastName, &acc.Email, &acc.DateOfBirth,
		&acc.PreferredCurrency, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}
