package events

import (
	"testing"
	"time"
)

func TestPlanSavedMessageJSON(t *testing.T) {
	msg := NewPlanSavedMessage(7, 16, "remote")
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := PlanSavedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Version != 7 || got.Records != 16 || got.Backend != "remote" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if got.Timestamp.IsZero() || time.Since(got.Timestamp) > time.Minute {
		t.Fatalf("timestamp not set: %v", got.Timestamp)
	}
}

func TestPlanEditedMessageJSON(t *testing.T) {
	msg := NewPlanEditedMessage(3, 12, "sales")
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := PlanEditedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Version != 3 || got.RecordID != 12 || got.Field != "sales" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestMessageFromJSONInvalid(t *testing.T) {
	if _, err := PlanSavedMessageFromJSON([]byte("{")); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := PlanEditedMessageFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error")
	}
}
