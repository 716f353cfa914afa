package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
	"github.com/wallet-ledger/internal/domain/wallet"
)

type MockTransactionValidator struct {
	mock.Mock
}

func (m *MockTransactionValidator) Validate(ctx context.Context, request *shared.TransactionRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockTransactionValidator) FindProcessed(ctx context.Context, request *shared.TransactionRequest) (*transaction.Outcome, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Outcome), args.Error(1)
}

type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	args := m.Called(ctx, amount, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockWalletManager struct {
	mock.Mock
}

func (m *MockWalletManager) Load(ctx context.Context, accountID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletManager) Apply(ctx context.Context, tx pgx.Tx, w *wallet.Wallet, decision wallet.Decision) error {
	args := m.Called(ctx, tx, w, decision)
	return args.Error(0)
}

type MockLedgerRecorder struct {
	mock.Mock
}

func (m *MockLedgerRecorder) Record(ctx context.Context, tx pgx.Tx, request *shared.TransactionRequest,
	decision wallet.Decision, converted decimal.Decimal, walletCurrency string) (*transaction.Log, error) {
	args := m.Called(ctx, tx, request, decision, converted, walletCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Log), args.Error(1)
}

type MockRejectionRecorder struct {
	mock.Mock
}

func (m *MockRejectionRecorder) RecordRejection(ctx context.Context, request *shared.TransactionRequest,
	walletCurrency string, reason shared.RejectionReason, cause error) error {
	args := m.Called(ctx, request, walletCurrency, reason, cause)
	return args.Error(0)
}

type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessTransaction(ctx context.Context, request *shared.TransactionRequest) (*transaction.Outcome, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Outcome), args.Error(1)
}
