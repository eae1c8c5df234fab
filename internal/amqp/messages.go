package amqp

import (
	"encoding/json"
	"time"

	"ore/internal/core"
)

// MonthRecomputeMessage asks the worker to recompute one billing month.
// It deliberately carries only the period, not data: the worker reads the
// current entries and configuration from the database, so a stale or
// duplicated message converges on the same result.
type MonthRecomputeMessage struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMonthRecomputeMessage creates a recompute request for a billing month.
func NewMonthRecomputeMessage(year, month int, reason string) *MonthRecomputeMessage {
	return &MonthRecomputeMessage{
		Year:      year,
		Month:     month,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// Validate rejects periods the worker could never compute.
func (m *MonthRecomputeMessage) Validate() error {
	if m.Month < 1 || m.Month > 12 {
		return core.ErrInvalidMonth
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *MonthRecomputeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthRecomputeMessageFromJSON creates a message from JSON bytes
func MonthRecomputeMessageFromJSON(data []byte) (*MonthRecomputeMessage, error) {
	var msg MonthRecomputeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
