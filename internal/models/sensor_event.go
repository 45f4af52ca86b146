package models

import "time"

// Event types written to the sensor log.
const (
	EventEnable      = "ENABLE"
	EventDisable     = "DISABLE"
	EventCalibration = "CALIBRATION"
	EventError       = "ERROR"
)

// SensorEvent is a single log entry.
type SensorEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // ENABLE | DISABLE | CALIBRATION | ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
	// OperatorID is the API operator that caused the event; 0 means the
	// daemon itself (startup, poll loop).
	OperatorID int `json:"operator_id,omitempty"`
}
