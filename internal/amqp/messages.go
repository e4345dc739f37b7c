package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangeMessage announces that persisted keys changed. It carries no
// ledger data; consumers read the current state from the shared store.
type LedgerChangeMessage struct {
	Kind      string    `json:"kind"`
	Keys      []string  `json:"keys"`
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangeMessage(kind string, keys []string, revision int64) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		Kind:      kind,
		Keys:      keys,
		Revision:  revision,
		Timestamp: time.Now().UTC(),
	}
}

func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
