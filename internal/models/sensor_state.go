package models

import "time"

// Calibration outcomes persisted in SensorState.CalibrationStatus.
const (
	CalibrationApplied = "APPLIED"
	CalibrationSkipped = "SKIPPED"
	CalibrationUnknown = "UNKNOWN"
)

// SensorState is the persisted snapshot of the light sensor.
type SensorState struct {
	ID                int       `json:"id"`
	Enabled           bool      `json:"enabled"`
	CalibrationStatus string    `json:"calibration_status"`          // APPLIED | SKIPPED | UNKNOWN
	CalibrationFactor int32     `json:"calibration_factor"`          // 0 when not applied
	CalibrationError  string    `json:"calibration_error,omitempty"` // kind of the last failure
	LastReading       *Reading  `json:"last_reading,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}
