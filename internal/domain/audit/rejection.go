package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/wallet-ledger/internal/domain/shared"
)

// Rejection records a request that was refused before any ledger write,
// such as a failed currency conversion. It is never a transaction log.
type Rejection struct {
	TransactionID  string                 `json:"transaction_id" bson:"transaction_id"`
	AccountID      string                 `json:"account_id" bson:"account_id"`
	Type           shared.TransactionType `json:"type" bson:"type"`
	Amount         string                 `json:"amount" bson:"amount"`
	Currency       string                 `json:"currency" bson:"currency"`
	WalletCurrency string                 `json:"wallet_currency,omitempty" bson:"wallet_currency,omitempty"`
	Reason         shared.RejectionReason `json:"reason" bson:"reason"`
	Detail         string                 `json:"detail,omitempty" bson:"detail,omitempty"`
	CorrelationID  string                 `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	RejectedAt     time.Time              `json:"rejected_at" bson:"rejected_at"`
}

func NewRejection(req *shared.TransactionRequest, walletCurrency string, reason shared.RejectionReason, cause error) *Rejection {
	r := &Rejection{
		TransactionID:  req.TransactionID.String(),
		AccountID:      req.AccountID.String(),
		Type:           req.Type,
		Amount:         req.Amount.StringFixed(shared.MoneyScale),
		Currency:       req.Currency,
		WalletCurrency: walletCurrency,
		Reason:         reason,
		CorrelationID:  req.CorrelationID,
		RejectedAt:     time.Now().UTC(),
	}
	if cause != nil {
		r.Detail = cause.Error()
	}
	return r
}

// AccountKey is the lookup key rejections are listed by.
func AccountKey(accountID uuid.UUID) string {
	return accountID.String()
}
