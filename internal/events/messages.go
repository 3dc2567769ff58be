package events

import (
	"encoding/json"
	"time"
)

// Routing keys for plan lifecycle events.
const (
	RoutingPlanSaved  = "plan.saved"
	RoutingPlanEdited = "plan.edited"
)

// PlanSavedMessage notifies downstream consumers that an explicit save
// completed. It carries counts only; consumers that want the data
// load it from the store.
type PlanSavedMessage struct {
	Version   uint64    `json:"version"`
	Records   int       `json:"records"`
	Backend   string    `json:"backend"`
	Timestamp time.Time `json:"timestamp"`
}

// PlanEditedMessage notifies that a single-field mutation was applied.
type PlanEditedMessage struct {
	Version   uint64    `json:"version"`
	RecordID  int64     `json:"recordId"`
	Field     string    `json:"field"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPlanSavedMessage(version uint64, records int, backend string) *PlanSavedMessage {
	return &PlanSavedMessage{Version: version, Records: records, Backend: backend, Timestamp: time.Now()}
}

func NewPlanEditedMessage(version uint64, recordID int64, field string) *PlanEditedMessage {
	return &PlanEditedMessage{Version: version, RecordID: recordID, Field: field, Timestamp: time.Now()}
}

func (m *PlanSavedMessage) ToJSON() ([]byte, error)  { return json.Marshal(m) }
func (m *PlanEditedMessage) ToJSON() ([]byte, error) { return json.Marshal(m) }

func PlanSavedMessageFromJSON(data []byte) (*PlanSavedMessage, error) {
	var msg PlanSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func PlanEditedMessageFromJSON(data []byte) (*PlanEditedMessage, error) {
	var msg PlanEditedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
