package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Transaction, error)
	List(ctx context.Context, limit, offset int) ([]*Transaction, error)
	Count(ctx context.Context) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

// LogRepository is append-only. Listings are in chronological order.
type LogRepository interface {
	Append(ctx context.Context, entry *Log) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*Log, error)
	ListByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Log, error)
	CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*Log, error)
	Count(ctx context.Context) (int64, error)
	WithTx(tx pgx.Tx) LogRepository
}

type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID.String()
}

func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	return ok && (t.TransactionID == uuid.Nil || t.TransactionID == e.TransactionID)
}

// ErrDuplicateTransaction is a unique violation on the transaction id or the idempotency key.
type ErrDuplicateTransaction struct {
	TransactionID  uuid.UUID
	IdempotencyKey string
}

func (e ErrDuplicateTransaction) Error() string {
	if e.IdempotencyKey != "" {
		return "duplicate transaction for idempotency key: " + e.IdempotencyKey
	}
	return "duplicate transaction: " + e.TransactionID.String()
}

func (e ErrDuplicateTransaction) Is(target error) bool {
	_, ok := target.(ErrDuplicateTransaction)
	return ok
}
