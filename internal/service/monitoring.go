package service

import (
	"context"
	"time"

	"lightsensord/internal/models"
	"lightsensord/internal/repository"
)

type MonitoringService struct {
	stateRepo repository.StateRepo
	driver    SensorDriver
	latest    LatestReading
}

func NewMonitoringService(stateRepo repository.StateRepo, driver SensorDriver, latest LatestReading) *MonitoringService {
	return &MonitoringService{stateRepo: stateRepo, driver: driver, latest: latest}
}

// GetState returns the persisted sensor state overlaid with the live enabled
// flag and the latest reading. Before anything is persisted a baseline
// snapshot is used.
func (s *MonitoringService) GetState(ctx context.Context) (models.SensorState, error) {
	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.SensorState{}, err
	}
	if state.ID == 0 {
		state = s.baselineState()
	}
	if s.driver != nil {
		state.Enabled = s.driver.Enabled()
	}
	if s.latest != nil {
		if r, ok := s.latest.Latest(); ok {
			state.LastReading = &r
		}
	}
	state.UpdatedAt = toUTC(state.UpdatedAt)
	return state, nil
}

// baselineState returns the snapshot reported for an uninitialized DB.
func (s *MonitoringService) baselineState() models.SensorState {
	return models.SensorState{
		ID:                sensorStateID, // DB schema enforces single-row state with id=1
		CalibrationStatus: models.CalibrationUnknown,
		UpdatedAt:         time.Now().UTC(),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
