package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/wallet-ledger/internal/domain/account"
	"github.com/wallet-ledger/internal/domain/audit"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
	"github.com/wallet-ledger/internal/domain/wallet"
)

type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Create(ctx context.Context, acc *account.Account) error {
	return m.Called(ctx, acc).Error(0)
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// callers mutate the account, hand out a copy
	acc := *args.Get(0).(*account.Account)
	return &acc, args.Error(1)
}

func (m *MockAccountRepo) List(ctx context.Context, limit, offset int) ([]*account.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepo) Update(ctx context.Context, acc *account.Account) error {
	return m.Called(ctx, acc).Error(0)
}

func (m *MockAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAccountRepo) WithTx(pgx.Tx) account.Repository { return m }

type MockWalletRepo struct {
	mock.Mock
}

func (m *MockWalletRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	w := *args.Get(0).(*wallet.Wallet)
	return &w, args.Error(1)
}

func (m *MockWalletRepo) Provision(ctx context.Context, w *wallet.Wallet) (bool, error) {
	args := m.Called(ctx, w)
	return args.Bool(0), args.Error(1)
}

func (m *MockWalletRepo) CompareAndSetBalance(ctx context.Context, accountID uuid.UUID, expectedVersion int64, newBalance decimal.Decimal) error {
	return m.Called(ctx, accountID, expectedVersion, newBalance).Error(0)
}

func (m *MockWalletRepo) ConfirmVersion(ctx context.Context, accountID uuid.UUID, expectedVersion int64) error {
	return m.Called(ctx, accountID, expectedVersion).Error(0)
}

func (m *MockWalletRepo) UpdateCurrency(ctx context.Context, accountID uuid.UUID, expectedVersion int64, currency string, balance decimal.Decimal) error {
	return m.Called(ctx, accountID, expectedVersion, currency, balance).Error(0)
}

func (m *MockWalletRepo) WithTx(pgx.Tx) wallet.Repository { return m }

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, tx *transaction.Transaction) error {
	return m.Called(ctx, tx).Error(0)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepo) WithTx(pgx.Tx) transaction.Repository { return m }

type MockLogRepo struct {
	mock.Mock
}

func (m *MockLogRepo) Append(ctx context.Context, entry *transaction.Log) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockLogRepo) GetByTransactionID(ctx context.Context, id uuid.UUID) (*transaction.Log, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Log), args.Error(1)
}

func (m *MockLogRepo) ListByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*transaction.Log, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Log), args.Error(1)
}

func (m *MockLogRepo) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLogRepo) List(ctx context.Context, limit, offset int) ([]*transaction.Log, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Log), args.Error(1)
}

func (m *MockLogRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLogRepo) WithTx(pgx.Tx) transaction.LogRepository { return m }

type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) Archive(ctx context.Context, entry *audit.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditRepo) GetByTransactionID(ctx context.Context, id uuid.UUID) (*audit.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Entry), args.Error(1)
}

func (m *MockAuditRepo) FindByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*audit.Entry, error) {
	args := m.Called(ctx, from, to, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Entry), args.Error(1)
}

func (m *MockAuditRepo) CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditRepo) RecordRejection(ctx context.Context, r *audit.Rejection) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockAuditRepo) ListRejections(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*audit.Rejection, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Rejection), args.Error(1)
}

func (m *MockAuditRepo) CountRejections(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) ProcessTransaction(ctx context.Context, req *shared.TransactionRequest) (*transaction.Outcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Outcome), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishRequest(ctx context.Context, req *shared.TransactionRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	args := m.Called(ctx, amount, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
