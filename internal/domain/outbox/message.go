// Package outbox queues committed transaction logs for delivery to the audit archive.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
)

// Message is written in the same database transaction as the log it carries.
type Message struct {
	ID            int64               `json:"id"`
	TransactionID uuid.UUID           `json:"transaction_id"`
	AccountID     uuid.UUID           `json:"account_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(entry *transaction.Log) (*Message, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	return &Message{
		TransactionID: entry.TransactionID,
		AccountID:     entry.AccountID,
		Payload:       payload,
		Status:        shared.OutboxStatusPending,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

func (m *Message) RecordAttempt() {
	m.Attempts++
	m.touch()
}

func (m *Message) MarkProcessed() {
	m.Status = shared.OutboxStatusProcessed
	m.touch()
}

func (m *Message) MarkFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	m.touch()
}

// Exhausted reports whether the message used up its delivery attempts.
func (m *Message) Exhausted(maxAttempts int) bool {
	return m.Attempts >= maxAttempts
}

// Log decodes the carried transaction log.
func (m *Message) Log() (*transaction.Log, error) {
	var entry transaction.Log
	if err := json.Unmarshal(m.Payload, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (m *Message) touch() {
	now := time.Now().UTC()
	m.LastAttemptAt = &now
}
