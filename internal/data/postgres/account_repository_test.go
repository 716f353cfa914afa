package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-ledger/internal/domain/account"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func q(sql string) string { return regexp.QuoteMeta(sql) }

var accountCols = []string{"id", "first_name", "last_name", "email", "date_of_birth", "preferred_currency", "created_at", "updated_at"}

func sampleAccount() *account.Account {
	dob := time.Date(1985, 1, 2, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	return &account.Account{
		ID:                uuid.New(),
		FirstName:         "Grace",
		LastName:          "Hopper",
		Email:             "grace@example.com",
		DateOfBirth:       &dob,
		PreferredCurrency: "USD",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func accountRow(acc *account.Account) *pgxmock.Rows {
	return pgxmock.NewRows(accountCols).AddRow(
		acc.ID, acc.FirstName, acc.LastName, acc.Email, acc.DateOfBirth,
		acc.PreferredCurrency, acc.CreatedAt, acc.UpdatedAt,
	)
}

func TestAccountRepository_Create(t *testing.T) {
	ctx := context.Background()
	acc := sampleAccount()
	args := []interface{}{acc.ID, acc.FirstName, acc.LastName, acc.Email, acc.DateOfBirth, acc.PreferredCurrency, acc.CreatedAt, acc.UpdatedAt}

	t.Run("success", func(t *testing.T) {
		mock := newMock(t)
		repo := &AccountRepository{querier: mock, logger: newTestLogger()}
		mock.ExpectExec(q(insertAccountSQL)).WithArgs(args...).WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Create(ctx, acc))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock := newMock(t)
		repo := &AccountRepository{querier: mock, logger: newTestLogger()}
		mock.ExpectExec(q(insertAccountSQL)).WithArgs(args...).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})

		err := repo.Create(ctx, acc)
		var dup account.ErrDuplicateEmail
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, acc.Email, dup.Email)
	})

	t.Run("db error", func(t *testing.T) {
		mock := newMock(t)
		repo := &AccountRepository{querier: mock, logger: newTestLogger()}
		dbErr := errors.New("db down")
		mock.ExpectExec(q(insertAccountSQL)).WithArgs(args...).WillReturnError(dbErr)

		err := repo.Create(ctx, acc)
		assert.ErrorIs(t, err, dbErr)
		assert.ErrorContains(t, err, "failed to create account")
	})
}

func TestAccountRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	acc := sampleAccount()

	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		repo := &AccountRepository{querier: mock, logger: newTestLogger()}
		mock.ExpectQuery(q(selectAccountByIDSQL)).WithArgs(acc.ID).WillReturnRows(accountRow(acc))

		got, err := repo.GetByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, acc, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMock(t)
		repo := &AccountRepository{querier: mock, logger: newTestLogger()}
		mock.ExpectQuery(q(selectAccountByIDSQL)).WithArgs(acc.ID).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(ctx, acc.ID)
		assert.ErrorIs(t, err, account.ErrAccountNotFound{AccountID: acc.ID})
	})
}

func TestAccountRepository_ListAndCount(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	a, b := sampleAccount(), sampleAccount()
	b.DateOfBirth = nil

	rows := accountRow(a).AddRow(b.ID, b.FirstName, b.LastName, b.Email, b.DateOfBirth, b.PreferredCurrency, b.CreatedAt, b.UpdatedAt)
	mock.ExpectQuery(q(listAccountsSQL)).WithArgs(20, 40).WillReturnRows(rows)
	mock.ExpectQuery(q(countAccountsSQL)).WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	list, err := repo.List(ctx, 20, 40)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Nil(t, list[1].DateOfBirth)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Update(t *testing.T) {
	ctx := context.Background()
	acc := sampleAccount()
	args := []interface{}{acc.FirstName, acc.LastName, acc.Email, acc.DateOfBirth, acc.PreferredCurrency, acc.UpdatedAt, acc.ID}

	t.Run("success", func(t *testing.T) {
		mock := newMock(t)
		repo := &AccountRepository{querier: mock, logger: newTestLogger()}
		mock.ExpectExec(q(updateAccountSQL)).WithArgs(args...).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.Update(ctx, acc))
	})

	t.Run("missing row", func(t *testing.T) {
		mock := newMock(t)
		repo := &AccountRepository{querier: mock, logger: newTestLogger()}
		mock.ExpectExec(q(updateAccountSQL)).WithArgs(args...).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorAs(t, repo.Update(ctx, acc), &account.ErrAccountNotFound{})
	})

	t.Run("email taken", func(t *testing.T) {
		mock := newMock(t)
		repo := &AccountRepository{querier: mock, logger: newTestLogger()}
		mock.ExpectExec(q(updateAccountSQL)).WithArgs(args...).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})

		assert.ErrorAs(t, repo.Update(ctx, acc), &account.ErrDuplicateEmail{})
	})
}

func TestAccountRepository_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	mock := newMock(t)
	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	mock.ExpectExec(q(deleteAccountSQL)).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(q(deleteAccountSQL)).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(ctx, id))
	assert.ErrorAs(t, repo.Delete(ctx, id), &account.ErrAccountNotFound{})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_WithTx(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	txRepo, ok := repo.WithTx(tx).(*AccountRepository)
	require.True(t, ok)
	assert.Equal(t, tx, txRepo.querier)
}
