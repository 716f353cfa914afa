package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/api_gateway/service"
	"github.com/wallet-ledger/internal/domain/account"
	"github.com/wallet-ledger/internal/domain/audit"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
	"github.com/wallet-ledger/internal/domain/wallet"
)

const dateLayout = "2006-01-02"

// CreateAccountRequest opens an account. date_of_birth is YYYY-MM-DD.
type CreateAccountRequest struct {
	FirstName         string  `json:"first_name" binding:"required"`
	LastName          string  `json:"last_name" binding:"required"`
	Email             string  `json:"email" binding:"required"`
	DateOfBirth       *string `json:"date_of_birth,omitempty"`
	PreferredCurrency string  `json:"preferred_currency,omitempty"`
}

// UpdateAccountRequest is a partial update; absent fields are kept.
type UpdateAccountRequest struct {
	FirstName         *string `json:"first_name,omitempty"`
	LastName          *string `json:"last_name,omitempty"`
	Email             *string `json:"email,omitempty"`
	DateOfBirth       *string `json:"date_of_birth,omitempty"`
	PreferredCurrency *string `json:"preferred_currency,omitempty"`
}

type WalletResponse struct {
	ID       string `json:"id"`
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
	Version  int64  `json:"version"`
}

type AccountResponse struct {
	ID                string          `json:"id"`
	FirstName         string          `json:"first_name"`
	LastName          string          `json:"last_name"`
	Email             string          `json:"email"`
	DateOfBirth       string          `json:"date_of_birth,omitempty"`
	PreferredCurrency string          `json:"preferred_currency"`
	Wallet            *WalletResponse `json:"wallet,omitempty"`
	CreatedAt         string          `json:"created_at"`
	UpdatedAt         string          `json:"updated_at"`
}

type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Owner     string `json:"owner"`
	Email     string `json:"email"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
}

// CreateTransactionRequest asks for one debit or credit. transaction_id is
// generated when absent; the Idempotency-Key header is used when the body has no key.
type CreateTransactionRequest struct {
	TransactionID  string           `json:"transaction_id,omitempty" binding:"omitempty,uuid"`
	AccountID      string           `json:"account_id" binding:"required,uuid"`
	Type           string           `json:"type" binding:"required,oneof=debit credit"`
	Amount         *decimal.Decimal `json:"amount" binding:"required"`
	Currency       string           `json:"currency" binding:"required"`
	IdempotencyKey string           `json:"idempotency_key,omitempty" binding:"max=255"`
}

type OutcomeResponse struct {
	TransactionID    string `json:"transaction_id"`
	Status           string `json:"status"`
	FailureReason    string `json:"failure_reason,omitempty"`
	ConvertedAmount  string `json:"converted_amount"`
	WalletCurrency   string `json:"wallet_currency"`
	ResultingBalance string `json:"resulting_balance"`
}

type TransactionResponse struct {
	ID               string `json:"id"`
	AccountID        string `json:"account_id"`
	Type             string `json:"type"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	ResultingBalance string `json:"resulting_balance"`
	IdempotencyKey   string `json:"idempotency_key,omitempty"`
	CorrelationID    string `json:"correlation_id,omitempty"`
	CreatedAt        string `json:"created_at"`
}

type TransactionLogResponse struct {
	ID               string `json:"id"`
	TransactionID    string `json:"transaction_id"`
	AccountID        string `json:"account_id"`
	Type             string `json:"type"`
	Status           string `json:"status"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
	ConvertedAmount  string `json:"converted_amount"`
	WalletCurrency   string `json:"wallet_currency"`
	BalanceBefore    string `json:"balance_before"`
	ResultingBalance string `json:"resulting_balance"`
	Summary          string `json:"summary"`
	CreatedAt        string `json:"created_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

func (p PaginationParams) Limit() int  { return p.PerPage }
func (p PaginationParams) Offset() int { return (p.Page - 1) * p.PerPage }

// TimeRangeParams bounds archive reports; both ends are RFC 3339 and default
// to the last 24 hours.
type TimeRangeParams struct {
	From string `form:"from"`
	To   string `form:"to"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(shared.MoneyScale)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func mapWallet(w *wallet.Wallet) *WalletResponse {
	if w == nil {
		return nil
	}
	return &WalletResponse{
		ID:       w.ID.String(),
		Balance:  money(w.Balance),
		Currency: w.Currency,
		Version:  w.Version,
	}
}

func mapAccount(acc *account.Account, w *wallet.Wallet) AccountResponse {
	resp := AccountResponse{
		ID:                acc.ID.String(),
		FirstName:         acc.FirstName,
		LastName:          acc.LastName,
		Email:             acc.Email,
		PreferredCurrency: acc.PreferredCurrency,
		Wallet:            mapWallet(w),
		CreatedAt:         timestamp(acc.CreatedAt),
		UpdatedAt:         timestamp(acc.UpdatedAt),
	}
	if acc.DateOfBirth != nil {
		resp.DateOfBirth = acc.DateOfBirth.Format(dateLayout)
	}
	return resp
}

func mapAccountView(v *service.AccountView) AccountResponse {
	return mapAccount(v.Account, v.Wallet)
}

func mapBalance(v *service.BalanceView) BalanceResponse {
	return BalanceResponse{
		AccountID: v.AccountID.String(),
		Owner:     v.FullName,
		Email:     v.Email,
		Currency:  v.Currency,
		Balance:   money(v.Balance),
	}
}

func mapOutcome(o *transaction.Outcome) OutcomeResponse {
	resp := OutcomeResponse{
		TransactionID:    o.TransactionID.String(),
		Status:           string(o.Status),
		ConvertedAmount:  money(o.ConvertedAmount),
		WalletCurrency:   o.WalletCurrency,
		ResultingBalance: money(o.ResultingBalance),
	}
	if o.Status == shared.TransactionStatusFailed {
		resp.FailureReason = string(shared.RejectionReasonInsufficientFunds)
	}
	return resp
}

func mapTransaction(t *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:               t.ID.String(),
		AccountID:        t.AccountID.String(),
		Type:             string(t.Type),
		Amount:           money(t.Amount),
		Currency:         t.Currency,
		Status:           string(t.Status),
		ResultingBalance: money(t.ResultingBalance),
		IdempotencyKey:   t.IdempotencyKey,
		CorrelationID:    t.CorrelationID,
		CreatedAt:        timestamp(t.CreatedAt),
	}
}

func mapLog(l *transaction.Log) TransactionLogResponse {
	return TransactionLogResponse{
		ID:               l.ID.String(),
		TransactionID:    l.TransactionID.String(),
		AccountID:        l.AccountID.String(),
		Type:             string(l.Type),
		Status:           string(l.Status),
		Amount:           money(l.Amount),
		Currency:         l.Currency,
		ConvertedAmount:  money(l.ConvertedAmount),
		WalletCurrency:   l.WalletCurrency,
		BalanceBefore:    money(l.BalanceBefore),
		ResultingBalance: money(l.ResultingBalance),
		Summary:          l.Summary(),
		CreatedAt:        timestamp(l.CreatedAt),
	}
}

func mapLogs(logs []*transaction.Log) []TransactionLogResponse {
	out := make([]TransactionLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, mapLog(l))
	}
	return out
}

func mapEntries(entries []*audit.Entry) ([]TransactionLogResponse, error) {
	out := make([]TransactionLogResponse, 0, len(entries))
	for _, e := range entries {
		l, err := e.Log()
		if err != nil {
			return nil, err
		}
		out = append(out, mapLog(l))
	}
	return out, nil
}
