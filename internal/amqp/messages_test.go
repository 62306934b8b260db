package amqp

import "testing"

func TestLedgerChangedMessageRoundTrip(t *testing.T) {
	msg := NewLedgerChangedMessage("2025-08-01", "Sota")
	if msg.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := LedgerChangedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Date != "2025-08-01" || got.Participant != "Sota" {
		t.Fatalf("unexpected message: %+v", got)
	}
}

func TestLedgerChangedMessageFromJSONInvalid(t *testing.T) {
	if _, err := LedgerChangedMessageFromJSON([]byte("{")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
