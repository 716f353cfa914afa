// Package mongo implements the audit archive on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wallet-ledger/internal/domain/audit"
)

const (
	LogCollection       = "transaction_logs"
	RejectionCollection = "rejected_transactions"
)

type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

func NewAuditRepository(logger *slog.Logger, db *mongo.Database) *AuditRepository {
	return &AuditRepository{db: db, logger: logger}
}

var _ audit.Repository = (*AuditRepository)(nil)

// EnsureIndexes creates the unique transaction index that makes Archive idempotent,
// plus the indexes behind the range and per-account listings.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(LogCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "transaction_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", LogCollection, err)
	}
	_, err = r.db.Collection(RejectionCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "rejected_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", RejectionCollection, err)
	}
	return nil
}

// Archive stores the entry. Archiving the same transaction twice returns ErrDuplicateEntry.
func (r *AuditRepository) Archive(ctx context.Context, e *audit.Entry) error {
	if _, err := r.db.Collection(LogCollection).InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return audit.ErrDuplicateEntry{TransactionID: e.TransactionID}
		}
		r.logger.Error("failed to archive transaction log", "transaction_id", e.TransactionID, "error", err)
		return fmt.Errorf("failed to archive transaction log: %w", err)
	}
	return nil
}

func (r *AuditRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*audit.Entry, error) {
	var e audit.Entry
	err := r.db.Collection(LogCollection).
		FindOne(ctx, bson.M{"transaction_id": transactionID.String()}).
		Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, audit.ErrEntryNotFound{TransactionID: transactionID}
		}
		r.logger.Error("failed to get archived entry", "transaction_id", transactionID, "error", err)
		return nil, fmt.Errorf("failed to get archived entry: %w", err)
	}
	return &e, nil
}

// FindByTimeRange lists entries created in [from, to], oldest first.
func (r *AuditRepository) FindByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*audit.Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "transaction_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.db.Collection(LogCollection).Find(ctx, timeRange(from, to), opts)
	if err != nil {
		r.logger.Error("failed to query archive", "from", from, "to", to, "error", err)
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]*audit.Entry, 0, limit)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode archived entries: %w", err)
	}
	return entries, nil
}

func (r *AuditRepository) CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error) {
	n, err := r.db.Collection(LogCollection).CountDocuments(ctx, timeRange(from, to))
	if err != nil {
		r.logger.Error("failed to count archive", "from", from, "to", to, "error", err)
		return 0, fmt.Errorf("failed to count archived entries: %w", err)
	}
	return n, nil
}

func (r *AuditRepository) RecordRejection(ctx context.Context, rej *audit.Rejection) error {
	if _, err := r.db.Collection(RejectionCollection).InsertOne(ctx, rej); err != nil {
		r.logger.Error("failed to record rejection", "transaction_id", rej.TransactionID, "error", err)
		return fmt.Errorf("failed to record rejection: %w", err)
	}
	return nil
}

// ListRejections lists an account's rejections, newest first.
func (r *AuditRepository) ListRejections(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*audit.Rejection, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "rejected_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.db.Collection(RejectionCollection).Find(ctx, bson.M{"account_id": audit.AccountKey(accountID)}, opts)
	if err != nil {
		r.logger.Error("failed to list rejections", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list rejections: %w", err)
	}
	defer cursor.Close(ctx)

	rejections := make([]*audit.Rejection, 0, limit)
	if err := cursor.All(ctx, &rejections); err != nil {
		return nil, fmt.Errorf("failed to decode rejections: %w", err)
	}
	return rejections, nil
}

func (r *AuditRepository) CountRejections(ctx context.Context, accountID uuid.UUID) (int64, error) {
	n, err := r.db.Collection(RejectionCollection).CountDocuments(ctx, bson.M{"account_id": audit.AccountKey(accountID)})
	if err != nil {
		return 0, fmt.Errorf("failed to count rejections: %w", err)
	}
	return n, nil
}

func timeRange(from, to time.Time) bson.M {
	return bson.M{"created_at": bson.M{"$gte": from, "$lte": to}}
}
