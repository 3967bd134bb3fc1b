package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidMessage = errors.New("invalid report message")

// ReportMessage carries one shared expense report. The body is the full
// plain-text report, so a consumer needs nothing else to archive it.
type ReportMessage struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	MonthYear string    `json:"monthYear,omitempty"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReportMessage creates a message with a fresh ID stamped now.
func NewReportMessage(title, monthYear, body string) *ReportMessage {
	return &ReportMessage{
		ID:        uuid.NewString(),
		Title:     title,
		MonthYear: monthYear,
		Body:      body,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportMessageFromJSON decodes and validates a message.
func ReportMessageFromJSON(data []byte) (*ReportMessage, error) {
	var msg ReportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		return nil, fmt.Errorf("%w: id %q", ErrInvalidMessage, msg.ID)
	}
	if msg.Body == "" {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidMessage)
	}
	return &msg, nil
}
