package models

import "time"

// Fixed identifiers stamped on every light reading.
const (
	ReadingSchemaVersion = 1
	SensorHandleLight    = 4 // handle registered with the sensor service
	SensorTypeLight      = 5
	ReadingDataLen       = 16
)

// Reading is one completed light sample, emitted at a sync boundary.
// Only Data[0..2] are populated: ambient, ambient again, white light.
type Reading struct {
	ID          string                  `json:"id,omitempty"`
	Version     int                     `json:"version"`
	SensorID    int                     `json:"sensor_id"`
	Type        int                     `json:"type"`
	Data        [ReadingDataLen]float32 `json:"data"`
	TimestampNs int64                   `json:"timestamp_ns"` // monotonic
	RecordedAt  time.Time               `json:"recorded_at,omitempty"`
}

// NewLightReading returns an all-zero reading with the fixed header fields set.
func NewLightReading() Reading {
	return Reading{
		Version:  ReadingSchemaVersion,
		SensorID: SensorHandleLight,
		Type:     SensorTypeLight,
	}
}

// Ambient returns the ambient channel value (slot 0).
func (r Reading) Ambient() float32 { return r.Data[0] }

// White returns the white-light channel value (slot 2).
func (r Reading) White() float32 { return r.Data[2] }
