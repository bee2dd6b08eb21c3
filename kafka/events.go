package kafka

import (
	"time"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
)

// TransactionRecordedEvent mirrors one audit log entry on the stream
type TransactionRecordedEvent struct {
	EventID       string         `json:"event_id"`
	EventType     string         `json:"event_type"`
	TransactionID string         `json:"transaction_id"`
	ActionType    string         `json:"action_type"`
	User          string         `json:"user"`
	Details       map[string]any `json:"details"`
	RecordedAt    time.Time      `json:"recorded_at"`
	Timestamp     time.Time      `json:"timestamp"`
}

// NewTransactionRecordedEvent builds the event for tx
func NewTransactionRecordedEvent(tx auditdomain.Transaction) TransactionRecordedEvent {
	return TransactionRecordedEvent{
		TransactionID: tx.ID,
		ActionType:    tx.ActionType,
		User:          tx.User,
		Details:       tx.Details,
		RecordedAt:    tx.Timestamp,
	}
}

// Transaction converts the event back into an audit entry
func (e TransactionRecordedEvent) Transaction() auditdomain.Transaction {
	return auditdomain.Transaction{
		ID:         e.TransactionID,
		Timestamp:  e.RecordedAt,
		ActionType: e.ActionType,
		Details:    e.Details,
		User:       e.User,
	}
}

// Event types
const (
	EventTypeTransactionRecorded = "transaction.recorded"
)

// Kafka topics
const (
	TopicTransactions = "pos-transactions"
)
