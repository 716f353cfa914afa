package components

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/wallet-ledger/internal/domain/audit"
	"github.com/wallet-ledger/internal/domain/outbox"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
	"github.com/wallet-ledger/internal/domain/wallet"
)

type MockWalletRepo struct {
	mock.Mock
}

func (m *MockWalletRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepo) Provision(ctx context.Context, w *wallet.Wallet) (bool, error) {
	args := m.Called(ctx, w)
	return args.Bool(0), args.Error(1)
}

func (m *MockWalletRepo) CompareAndSetBalance(ctx context.Context, accountID uuid.UUID, expectedVersion int64, newBalance decimal.Decimal) error {
	args := m.Called(ctx, accountID, expectedVersion, newBalance)
	return args.Error(0)
}

func (m *MockWalletRepo) ConfirmVersion(ctx context.Context, accountID uuid.UUID, expectedVersion int64) error {
	args := m.Called(ctx, accountID, expectedVersion)
	return args.Error(0)
}

func (m *MockWalletRepo) UpdateCurrency(ctx context.Context, accountID uuid.UUID, expectedVersion int64, currency string, balance decimal.Decimal) error {
	args := m.Called(ctx, accountID, expectedVersion, currency, balance)
	return args.Error(0)
}

func (m *MockWalletRepo) WithTx(tx pgx.Tx) wallet.Repository {
	args := m.Called(tx)
	return args.Get(0).(wallet.Repository)
}

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, tx *transaction.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*transaction.Transaction, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) List(ctx context.Context, limit, offset int) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepo) WithTx(tx pgx.Tx) transaction.Repository {
	args := m.Called(tx)
	return args.Get(0).(transaction.Repository)
}

type MockLogRepo struct {
	mock.Mock
}

func (m *MockLogRepo) Append(ctx context.Context, entry *transaction.Log) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLogRepo) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*transaction.Log, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Log), args.Error(1)
}

func (m *MockLogRepo) ListByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*transaction.Log, error) {
	args := m.Called(ctx, accountID, limit, offset)
	return args.Get(0).([]*transaction.Log), args.Error(1)
}

func (m *MockLogRepo) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLogRepo) List(ctx context.Context, limit, offset int) ([]*transaction.Log, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*transaction.Log), args.Error(1)
}

func (m *MockLogRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLogRepo) WithTx(tx pgx.Tx) transaction.LogRepository {
	args := m.Called(tx)
	return args.Get(0).(transaction.LogRepository)
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	args := m.Called(tx)
	return args.Get(0).(outbox.Repository)
}

type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) Archive(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepo) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*audit.Entry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Entry), args.Error(1)
}

func (m *MockAuditRepo) FindByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*audit.Entry, error) {
	args := m.Called(ctx, from, to, limit, offset)
	return args.Get(0).([]*audit.Entry), args.Error(1)
}

func (m *MockAuditRepo) CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditRepo) RecordRejection(ctx context.Context, r *audit.Rejection) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockAuditRepo) ListRejections(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*audit.Rejection, error) {
	args := m.Called(ctx, accountID, limit, offset)
	return args.Get(0).([]*audit.Rejection), args.Error(1)
}

func (m *MockAuditRepo) CountRejections(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}
