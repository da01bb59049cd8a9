package amqp

import (
	"encoding/json"
	"time"
)

// ReportGeneratedMessage announces a persisted report. It carries only
// identifiers; consumers fetch metadata and bytes from the report
// service so the queue never holds artifact payloads.
type ReportGeneratedMessage struct {
	ReportID  string    `json:"report_id"`
	OwnerID   string    `json:"owner_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReportGeneratedMessage(reportID, ownerID string) *ReportGeneratedMessage {
	return &ReportGeneratedMessage{
		ReportID:  reportID,
		OwnerID:   ownerID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportGeneratedMessageFromJSON creates a message from JSON bytes
func ReportGeneratedMessageFromJSON(data []byte) (*ReportGeneratedMessage, error) {
	var msg ReportGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
