package account

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository persists accounts. Deleting an account cascades to its wallet,
// transactions and transaction logs.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	List(ctx context.Context, limit, offset int) ([]*Account, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx pgx.Tx) Repository
}

type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID.String()
}

// ErrDuplicateEmail is returned when the unique email constraint is violated.
type ErrDuplicateEmail struct {
	Email string
}

func (e ErrDuplicateEmail) Error() string {
	return "account with email already exists: " + e.Email
}

// ErrInvalidAccount carries per-field validation failures.
type ErrInvalidAccount struct {
	Fields validation.Errors
}

func (e ErrInvalidAccount) Error() string {
	return "invalid account: " + e.Fields.Error()
}
