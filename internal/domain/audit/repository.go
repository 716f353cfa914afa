package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the MongoDB archive. Entries are never modified.
type Repository interface {
	Archive(ctx context.Context, entry *Entry) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*Entry, error)
	FindByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*Entry, error)
	CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error)

	RecordRejection(ctx context.Context, r *Rejection) error
	ListRejections(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Rejection, error)
	CountRejections(ctx context.Context, accountID uuid.UUID) (int64, error)
}

type ErrEntryNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "archived entry not found: " + e.TransactionID.String()
}

func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	return ok && (t.TransactionID == uuid.Nil || t.TransactionID == e.TransactionID)
}

// ErrDuplicateEntry means the log was archived already.
type ErrDuplicateEntry struct {
	TransactionID string
}

func (e ErrDuplicateEntry) Error() string {
	return "entry already archived: " + e.TransactionID
}

func (e ErrDuplicateEntry) Is(target error) bool {
	t, ok := target.(ErrDuplicateEntry)
	return ok && (t.TransactionID == "" || t.TransactionID == e.TransactionID)
}
