package amqp

import (
	"encoding/json"
	"time"
)

// Ledger entity kinds carried by export events.
const (
	EntityTransaction = "transaction"
	EntityPrediction  = "prediction"
)

// LedgerEventMessage announces a newly written ledger row to the
// export worker. It carries only identity; the worker fetches the full
// row from storage.
type LedgerEventMessage struct {
	Entity        string    `json:"entity"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	PredictionID  string    `json:"prediction_id,omitempty"`
	UserID        int64     `json:"user_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionEvent builds an export event for a transaction row.
func NewTransactionEvent(id, userID int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Entity:        EntityTransaction,
		TransactionID: id,
		UserID:        userID,
		Timestamp:     time.Now(),
	}
}

// NewPredictionEvent builds an export event for a prediction row.
func NewPredictionEvent(id string, userID int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Entity:       EntityPrediction,
		PredictionID: id,
		UserID:       userID,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON creates a message from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
