package components

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/ledger/service"
)

type WalletManagerImpl struct {
	walletRepo wallet.Repository
	logger     *slog.Logger
}

func NewWalletManager(walletRepo wallet.Repository, logger *slog.Logger) service.WalletManager {
	return &WalletManagerImpl{
		walletRepo: walletRepo,
		logger:     logger,
	}
}

func (m *WalletManagerImpl) Load(ctx context.Context, accountID uuid.UUID) (*wallet.Wallet, error) {
	return m.walletRepo.GetByAccountID(ctx, accountID)
}

// Apply writes a changed balance with compare-and-set. Decisions that leave the
// balance alone still pin the version, so a failed outcome is never recorded
// against a balance that has since moved.
func (m *WalletManagerImpl) Apply(ctx context.Context, tx pgx.Tx, w *wallet.Wallet, decision wallet.Decision) error {
	repo := m.walletRepo.WithTx(tx)

	if decision.Status == shared.TransactionStatusSuccess && decision.BalanceChanged {
		return repo.CompareAndSetBalance(ctx, w.AccountID, w.Version, decision.BalanceAfter)
	}
	return repo.ConfirmVersion(ctx, w.AccountID, w.Version)
}
