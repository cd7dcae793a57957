package amqp

import (
	"encoding/json"
	"time"
)

// Change operations carried over the wire.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// BillChangeMessage tells the sync worker which bill rows changed.
// The message carries ids only; the worker resolves upserts against the
// shared local snapshot so the payload stays small and the snapshot
// stays the single source of truth for row contents.
type BillChangeMessage struct {
	Operation string    `json:"operation"`
	IDs       []string  `json:"ids"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBillChangeMessage(operation string, ids []string) *BillChangeMessage {
	return &BillChangeMessage{
		Operation: operation,
		IDs:       ids,
		Timestamp: time.Now(),
	}
}

func (m *BillChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BillChangeMessageFromJSON(data []byte) (*BillChangeMessage, error) {
	var msg BillChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
