package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
	"github.com/wallet-ledger/internal/domain/wallet"
)

// ProcessingService applies transaction requests to wallets.
type ProcessingService interface {
	ProcessTransaction(ctx context.Context, request *shared.TransactionRequest) (*transaction.Outcome, error)
}

// TransactionValidator checks requests before any state is read.
type TransactionValidator interface {
	Validate(ctx context.Context, request *shared.TransactionRequest) error
	// FindProcessed returns the stored outcome when the request's transaction id
	// or idempotency key was already processed, or nil.
	FindProcessed(ctx context.Context, request *shared.TransactionRequest) (*transaction.Outcome, error)
}

// CurrencyConverter expresses an amount in another currency.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// WalletManager reads wallets and applies decisions inside a database transaction.
type WalletManager interface {
	Load(ctx context.Context, accountID uuid.UUID) (*wallet.Wallet, error)
	Apply(ctx context.Context, tx pgx.Tx, w *wallet.Wallet, decision wallet.Decision) error
}

// LedgerRecorder writes the transaction, its log entry and the archive outbox row.
type LedgerRecorder interface {
	Record(ctx context.Context, tx pgx.Tx, request *shared.TransactionRequest, decision wallet.Decision,
		converted decimal.Decimal, walletCurrency string) (*transaction.Log, error)
}

// RejectionRecorder keeps requests that never reached the ledger.
type RejectionRecorder interface {
	RecordRejection(ctx context.Context, request *shared.TransactionRequest, walletCurrency string,
		reason shared.RejectionReason, cause error) error
}
