// Package provisioning creates the wallet that belongs to every account.
package provisioning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/domain/account"
	"github.com/wallet-ledger/internal/domain/wallet"
)

type Provisioner struct {
	walletRepo wallet.Repository
	logger     *slog.Logger
}

func NewProvisioner(walletRepo wallet.Repository, logger *slog.Logger) *Provisioner {
	return &Provisioner{walletRepo: walletRepo, logger: logger}
}

// ProvisionWallet gives acc an empty wallet in its preferred currency, inside
// tx. An account that already has a wallet keeps it unchanged, so calling this
// twice is harmless.
func (p *Provisioner) ProvisionWallet(ctx context.Context, tx pgx.Tx, acc *account.Account) (*wallet.Wallet, error) {
	repo := p.walletRepo.WithTx(tx)

	w := wallet.New(acc.ID, acc.PreferredCurrency)
	created, err := repo.Provision(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("failed to provision wallet for account %s: %w", acc.ID, err)
	}
	if created {
		p.logger.Info("wallet provisioned", "account_id", acc.ID.String(), "currency", w.Currency)
		return w, nil
	}

	existing, err := repo.GetByAccountID(ctx, acc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing wallet for account %s: %w", acc.ID, err)
	}
	p.logger.Debug("wallet already provisioned", "account_id", acc.ID.String(), "wallet_id", existing.ID.String())
	return existing, nil
}
