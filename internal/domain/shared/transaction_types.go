package shared

// TransactionType is the direction of a balance change.
type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "debit"
	TransactionTypeCredit TransactionType = "credit"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

// TransactionStatus is the decided outcome of a processed transaction.
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// RejectionReason classifies requests that never reached the ledger, and
// failed outcomes that did.
type RejectionReason string

const (
	RejectionReasonInvalidRequest    RejectionReason = "INVALID_REQUEST"
	RejectionReasonWalletNotFound    RejectionReason = "WALLET_NOT_FOUND"
	RejectionReasonConversionFailed  RejectionReason = "CONVERSION_FAILED"
	RejectionReasonInsufficientFunds RejectionReason = "INSUFFICIENT_FUNDS"
	RejectionReasonMalformedMessage  RejectionReason = "MALFORMED_MESSAGE"
	RejectionReasonDuplicateRequest  RejectionReason = "DUPLICATE_REQUEST"
)

// OutboxStatus tracks delivery of a transaction log entry to the audit archive.
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
