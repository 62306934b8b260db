package amqp

import (
	"encoding/json"
	"time"

	"kakeibo/internal/core"
)

// LedgerChangedMessage notifies subscribers that a slot of the ledger was
// written. It carries no entry data: consumers reload a full snapshot from
// the store, so a lost or duplicated message costs at most one extra reload.
type LedgerChangedMessage struct {
	Date        core.DateKey     `json:"date"`
	Participant core.Participant `json:"participant"`
	Timestamp   time.Time        `json:"timestamp"`
}

func NewLedgerChangedMessage(date core.DateKey, p core.Participant) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Date:        date,
		Participant: p,
		Timestamp:   time.Now(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
