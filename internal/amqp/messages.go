package amqp

import (
	"encoding/json"
	"time"

	"vslim/internal/ledger"
)

// LedgerEventMessage carries one committed ledger mutation to the journal
// worker.
type LedgerEventMessage struct {
	Event     ledger.Event `json:"event"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewLedgerEventMessage(ev ledger.Event) *LedgerEventMessage {
	return &LedgerEventMessage{Event: ev, Timestamp: time.Now()}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
