package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wallet-ledger/internal/api_gateway/middleware"
	"github.com/wallet-ledger/internal/api_gateway/service"
	"github.com/wallet-ledger/internal/domain/account"
	"github.com/wallet-ledger/internal/domain/audit"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
)

type MockAccountService struct{ mock.Mock }

func (m *MockAccountService) CreateAccount(ctx context.Context, in service.NewAccountInput) (*service.AccountView, error) {
	args := m.Called(ctx, in)
	view, _ := args.Get(0).(*service.AccountView)
	return view, args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, id uuid.UUID) (*service.AccountView, error) {
	args := m.Called(ctx, id)
	view, _ := args.Get(0).(*service.AccountView)
	return view, args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, limit, offset int) ([]*account.Account, int64, error) {
	args := m.Called(ctx, limit, offset)
	accounts, _ := args.Get(0).([]*account.Account)
	return accounts, args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, id uuid.UUID, changes account.Changes) (*service.AccountView, error) {
	args := m.Called(ctx, id, changes)
	view, _ := args.Get(0).(*service.AccountView)
	return view, args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAccountService) GetBalance(ctx context.Context, id uuid.UUID) (*service.BalanceView, error) {
	args := m.Called(ctx, id)
	view, _ := args.Get(0).(*service.BalanceView)
	return view, args.Error(1)
}

type MockTransactionService struct{ mock.Mock }

func (m *MockTransactionService) ProcessTransaction(ctx context.Context, req *shared.TransactionRequest) (*transaction.Outcome, error) {
	args := m.Called(ctx, req)
	outcome, _ := args.Get(0).(*transaction.Outcome)
	return outcome, args.Error(1)
}

func (m *MockTransactionService) SubmitTransaction(ctx context.Context, req *shared.TransactionRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	tx, _ := args.Get(0).(*transaction.Transaction)
	return tx, args.Error(1)
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, limit, offset int) ([]*transaction.Transaction, int64, error) {
	args := m.Called(ctx, limit, offset)
	txs, _ := args.Get(0).([]*transaction.Transaction)
	return txs, args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionService) ListAccountLogs(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*transaction.Log, int64, error) {
	args := m.Called(ctx, accountID, limit, offset)
	logs, _ := args.Get(0).([]*transaction.Log)
	return logs, args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionService) ListLogs(ctx context.Context, limit, offset int) ([]*transaction.Log, int64, error) {
	args := m.Called(ctx, limit, offset)
	logs, _ := args.Get(0).([]*transaction.Log)
	return logs, args.Get(1).(int64), args.Error(2)
}

type MockReportService struct{ mock.Mock }

func (m *MockReportService) ArchivedLogs(ctx context.Context, from, to time.Time, limit, offset int) ([]*audit.Entry, int64, error) {
	args := m.Called(ctx, from, to, limit, offset)
	entries, _ := args.Get(0).([]*audit.Entry)
	return entries, args.Get(1).(int64), args.Error(2)
}

func (m *MockReportService) Rejections(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*audit.Rejection, int64, error) {
	args := m.Called(ctx, accountID, limit, offset)
	rejections, _ := args.Get(0).([]*audit.Rejection)
	return rejections, args.Get(1).(int64), args.Error(2)
}

type testAPI struct {
	router       *gin.Engine
	accounts     *MockAccountService
	transactions *MockTransactionService
	reports      *MockReportService
	reportClock  time.Time
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	api := &testAPI{
		router:       gin.New(),
		accounts:     &MockAccountService{},
		transactions: &MockTransactionService{},
		reports:      &MockReportService{},
		reportClock:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	t.Cleanup(func() {
		api.accounts.AssertExpectations(t)
		api.transactions.AssertExpectations(t)
		api.reports.AssertExpectations(t)
	})

	ah := NewAccountHandler(logger, api.accounts, api.reports)
	th := NewTransactionHandler(logger, api.transactions)
	rh := NewReportHandler(logger, api.reports)
	rh.now = func() time.Time { return api.reportClock }

	r := api.router
	r.Use(middleware.CorrelationID())
	r.POST("/accounts", ah.Create)
	r.GET("/accounts", ah.List)
	r.GET("/accounts/:id", ah.GetByID)
	r.PATCH("/accounts/:id", ah.Update)
	r.DELETE("/accounts/:id", ah.Delete)
	r.GET("/accounts/:id/balance", ah.Balance)
	r.GET("/accounts/:id/rejections", ah.Rejections)
	r.GET("/accounts/:id/transactions", th.GetByAccountID)
	r.POST("/transactions", th.Create)
	r.POST("/transactions/async", th.CreateAsync)
	r.GET("/transactions", th.List)
	r.GET("/transactions/:id", th.GetByID)
	r.GET("/transaction-logs", th.ListLogs)
	r.GET("/reports/transaction-logs", rh.ArchivedLogs)
	return api
}

func (a *testAPI) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals the envelope; data is decoded into out when non-nil.
func decode(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) Response {
	t.Helper()
	var raw struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw), rr.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return raw.Response
}
