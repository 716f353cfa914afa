package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository stores wallets. Balance writes go through CompareAndSetBalance only.
type Repository interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Wallet, error)

	// Provision inserts w unless the account already has a wallet.
	Provision(ctx context.Context, w *Wallet) (created bool, err error)

	// CompareAndSetBalance writes newBalance only if the stored version still
	// equals expectedVersion, and bumps the version.
	CompareAndSetBalance(ctx context.Context, accountID uuid.UUID, expectedVersion int64, newBalance decimal.Decimal) error

	// ConfirmVersion locks the wallet row for the rest of the database
	// transaction and fails if its version moved past expectedVersion.
	ConfirmVersion(ctx context.Context, accountID uuid.UUID, expectedVersion int64) error

	UpdateCurrency(ctx context.Context, accountID uuid.UUID, expectedVersion int64, currency string, balance decimal.Decimal) error
	WithTx(tx pgx.Tx) Repository
}

// ErrWalletNotFound means the account has no wallet, usually because the account does not exist.
type ErrWalletNotFound struct {
	AccountID uuid.UUID
}

func (e ErrWalletNotFound) Error() string {
	return "wallet not found for account: " + e.AccountID.String()
}

func (e ErrWalletNotFound) Is(target error) bool {
	t, ok := target.(ErrWalletNotFound)
	return ok && (t.AccountID == uuid.Nil || t.AccountID == e.AccountID)
}

// ErrConcurrentModification means another writer changed the wallet first.
type ErrConcurrentModification struct {
	AccountID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for wallet of account: " + e.AccountID.String()
}

func (e ErrConcurrentModification) Is(target error) bool {
	t, ok := target.(ErrConcurrentModification)
	return ok && (t.AccountID == uuid.Nil || t.AccountID == e.AccountID)
}
