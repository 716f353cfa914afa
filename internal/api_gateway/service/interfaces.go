package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/domain/account"
	"github.com/wallet-ledger/internal/domain/audit"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
	"github.com/wallet-ledger/internal/domain/wallet"
)

// AccountView is an account together with its wallet.
type AccountView struct {
	Account *account.Account
	Wallet  *wallet.Wallet
}

// BalanceView is the owner summary shown by the balance endpoint.
type BalanceView struct {
	AccountID uuid.UUID
	FullName  string
	Email     string
	Currency  string
	Balance   decimal.Decimal
}

// NewAccountInput is what a caller supplies to open an account. An empty
// currency falls back to the configured default.
type NewAccountInput struct {
	FirstName         string
	LastName          string
	Email             string
	DateOfBirth       *time.Time
	PreferredCurrency string
}

type AccountService interface {
	CreateAccount(ctx context.Context, in NewAccountInput) (*AccountView, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*AccountView, error)
	ListAccounts(ctx context.Context, limit, offset int) ([]*account.Account, int64, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, changes account.Changes) (*AccountView, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	GetBalance(ctx context.Context, id uuid.UUID) (*BalanceView, error)
}

type TransactionService interface {
	// ProcessTransaction runs the ledger engine and returns the decided outcome.
	ProcessTransaction(ctx context.Context, req *shared.TransactionRequest) (*transaction.Outcome, error)
	// SubmitTransaction queues the request for the transaction processor.
	SubmitTransaction(ctx context.Context, req *shared.TransactionRequest) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	ListTransactions(ctx context.Context, limit, offset int) ([]*transaction.Transaction, int64, error)
	ListAccountLogs(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*transaction.Log, int64, error)
	ListLogs(ctx context.Context, limit, offset int) ([]*transaction.Log, int64, error)
}

// ReportService reads the MongoDB archive.
type ReportService interface {
	ArchivedLogs(ctx context.Context, from, to time.Time, limit, offset int) ([]*audit.Entry, int64, error)
	Rejections(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*audit.Rejection, int64, error)
}

// CurrencyConverter expresses an amount in another currency.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}
