package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/domain/account"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/platform/persistence"
	"github.com/wallet-ledger/internal/provisioning"
)

type AccountServiceImpl struct {
	db          persistence.TxBeginner
	accountRepo account.Repository
	walletRepo  wallet.Repository
	provisioner *provisioning.Provisioner
	converter   CurrencyConverter
	cfg         config.LedgerConfig
	logger      *slog.Logger
}

func NewAccountService(
	db persistence.TxBeginner,
	accountRepo account.Repository,
	walletRepo wallet.Repository,
	provisioner *provisioning.Provisioner,
	converter CurrencyConverter,
	cfg config.LedgerConfig,
	logger *slog.Logger,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		db:          db,
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		provisioner: provisioner,
		converter:   converter,
		cfg:         cfg,
		logger:      logger,
	}
}

// CreateAccount inserts the account and provisions its wallet in one database transaction.
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, in NewAccountInput) (*AccountView, error) {
	acc, err := account.NewAccount(in.FirstName, in.LastName, in.Email, in.DateOfBirth, in.PreferredCurrency, s.cfg.DefaultCurrency)
	if err != nil {
		return nil, err
	}

	var w *wallet.Wallet
	err = persistence.ExecuteTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.accountRepo.WithTx(tx).Create(ctx, acc); err != nil {
			return err
		}
		w, err = s.provisioner.ProvisionWallet(ctx, tx, acc)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created", "account_id", acc.ID, "currency", w.Currency)
	return &AccountView{Account: acc, Wallet: w}, nil
}

func (s *AccountServiceImpl) GetAccount(ctx context.Context, id uuid.UUID) (*AccountView, error) {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	w, err := s.walletRepo.GetByAccountID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AccountView{Account: acc, Wallet: w}, nil
}

func (s *AccountServiceImpl) ListAccounts(ctx context.Context, limit, offset int) ([]*account.Account, int64, error) {
	accounts, err := s.accountRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.accountRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// DeleteAccount removes the account together with its wallet, transactions
// and transaction logs. The MongoDB archive keeps its copies.
func (s *AccountServiceImpl) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if err := s.accountRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("account deleted", "account_id", id)
	return nil
}

func (s *AccountServiceImpl) GetBalance(ctx context.Context, id uuid.UUID) (*BalanceView, error) {
	view, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BalanceView{
		AccountID: view.Account.ID,
		FullName:  view.Account.FullName(),
		Email:     view.Account.Email,
		Currency:  view.Wallet.Currency,
		Balance:   view.Wallet.Balance,
	}, nil
}

// UpdateAccount applies a partial update. When the preferred currency changes
// the wallet follows it, either retagged or with its balance converted
// depending on LedgerConfig.ReconvertOnCurrencyChange. The wallet write is
// guarded by its version and retried if a transaction lands in between.
func (s *AccountServiceImpl) UpdateAccount(ctx context.Context, id uuid.UUID, changes account.Changes) (*AccountView, error) {
	logger := s.logger.With("account_id", id)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.RetryInitialInterval
	b.MaxInterval = s.cfg.RetryMaxInterval
	b.MaxElapsedTime = 0
	maxAttempts := s.cfg.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxAttempts-1)), ctx)

	attempts := 0
	view, err := backoff.RetryNotifyWithData(func() (*AccountView, error) {
		attempts++
		v, err := s.updateOnce(ctx, id, changes)
		if err != nil && !errors.Is(err, wallet.ErrConcurrentModification{}) {
			return nil, backoff.Permanent(err)
		}
		return v, err
	}, policy, func(err error, wait time.Duration) {
		logger.Debug("wallet changed during currency update, retrying", "attempt", attempts, "wait", wait)
	})
	if err != nil {
		if errors.Is(err, wallet.ErrConcurrentModification{}) {
			return nil, shared.ErrRetriesExhausted{AccountID: id, Attempts: attempts}
		}
		return nil, err
	}
	return view, nil
}

func (s *AccountServiceImpl) updateOnce(ctx context.Context, id uuid.UUID, changes account.Changes) (*AccountView, error) {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	w, err := s.walletRepo.GetByAccountID(ctx, id)
	if err != nil {
		return nil, err
	}

	currencyChanged, err := acc.Apply(changes)
	if err != nil {
		return nil, err
	}

	balance := w.Balance
	if currencyChanged && s.cfg.ReconvertOnCurrencyChange {
		converted, err := s.converter.Convert(ctx, w.Balance, w.Currency, acc.PreferredCurrency)
		if err != nil {
			return nil, shared.ErrConversionFailed{From: w.Currency, To: acc.PreferredCurrency, Err: err}
		}
		balance = converted
	}

	err = persistence.ExecuteTx(ctx, s.db, func(tx pgx.Tx) error {
		if currencyChanged {
			if err := s.walletRepo.WithTx(tx).UpdateCurrency(ctx, id, w.Version, acc.PreferredCurrency, balance); err != nil {
				return err
			}
		}
		return s.accountRepo.WithTx(tx).Update(ctx, acc)
	})
	if err != nil {
		return nil, err
	}

	if currencyChanged {
		s.logger.Info("wallet currency changed",
			"account_id", id,
			"from", w.Currency,
			"to", acc.PreferredCurrency,
			"reconverted", s.cfg.ReconvertOnCurrencyChange,
			"balance", balance.StringFixed(shared.MoneyScale),
		)
		w.Currency = acc.PreferredCurrency
		w.Balance = balance
		w.Version++
	}
	return &AccountView{Account: acc, Wallet: w}, nil
}

var _ AccountService = (*AccountServiceImpl)(nil)
