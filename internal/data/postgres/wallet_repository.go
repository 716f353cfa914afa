package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/platform/persistence"
)

const (
	selectWalletSQL = `SELECT id, account_id, balance::text, currency, version, created_at, updated_at
		FROM wallets
		WHERE account_id = $1`

	provisionWalletSQL = `INSERT INTO wallets (id, account_id, balance, currency, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (account_id) DO NOTHING`

	casBalanceSQL = `UPDATE wallets
		SET balance = $1, version = version + 1, updated_at = NOW()
		WHERE account_id = $2 AND version = $3`

	confirmVersionSQL = `SELECT version FROM wallets WHERE account_id = $1 FOR SHARE`

	updateWalletCurrencySQL = `UPDATE wallets
		SET currency = $1, balance = $2, version = version + 1, updated_at = NOW()
		WHERE account_id = $3 AND version = $4`
)

type WalletRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewWalletRepository(logger *slog.Logger, db *persistence.PostgresDB) wallet.Repository {
	return &WalletRepository{querier: db.Pool(), logger: logger}
}

func (r *WalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	return &WalletRepository{querier: tx, logger: r.logger}
}

func (r *WalletRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*wallet.Wallet, error) {
	var (
		w       wallet.Wallet
		balance string
	)
	err := r.querier.QueryRow(ctx, selectWalletSQL, accountID).Scan(
		&w.ID, &w.AccountID, &balance, &w.Currency, &w.Version, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound{AccountID: accountID}
		}
		r.logger.Error("failed to get wallet", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if w.Balance, err = parseMoney("balance", balance); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) Provision(ctx context.Context, w *wallet.Wallet) (bool, error) {
	tag, err := r.querier.Exec(ctx, provisionWalletSQL,
		w.ID, w.AccountID, w.Balance, w.Currency, w.Version, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to provision wallet", "account_id", w.AccountID, "error", err)
		return false, fmt.Errorf("failed to provision wallet: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *WalletRepository) CompareAndSetBalance(ctx context.Context, accountID uuid.UUID, expectedVersion int64, newBalance decimal.Decimal) error {
	tag, err := r.querier.Exec(ctx, casBalanceSQL, newBalance, accountID, expectedVersion)
	if err != nil {
		r.logger.Error("failed to update wallet balance", "account_id", accountID, "error", err)
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return wallet.ErrConcurrentModification{AccountID: accountID}
	}
	return nil
}

func (r *WalletRepository) ConfirmVersion(ctx context.Context, accountID uuid.UUID, expectedVersion int64) error {
	var version int64
	err := r.querier.QueryRow(ctx, confirmVersionSQL, accountID).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return wallet.ErrWalletNotFound{AccountID: accountID}
		}
		r.logger.Error("failed to confirm wallet version", "account_id", accountID, "error", err)
		return fmt.Errorf("failed to confirm wallet version: %w", err)
	}
	if version != expectedVersion {
		return wallet.ErrConcurrentModification{AccountID: accountID}
	}
	return nil
}

func (r *WalletRepository) UpdateCurrency(ctx context.Context, accountID uuid.UUID, expectedVersion int64, currency string, balance decimal.Decimal) error {
	tag, err := r.querier.Exec(ctx, updateWalletCurrencySQL, currency, balance, accountID, expectedVersion)
	if err != nil {
		r.logger.Error("failed to update wallet currency", "account_id", accountID, "error", err)
		return fmt.Errorf("failed to update wallet currency: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return wallet.ErrConcurrentModification{AccountID: accountID}
	}
	return nil
}
