package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"lightsensord/internal/logger"
	"lightsensord/internal/metrics"
	"lightsensord/internal/models"
	"lightsensord/internal/repository"
	"lightsensord/internal/sensor"
)

const sensorStateID = 1

type SensorService struct {
	driver    SensorDriver
	latest    LatestReading
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	metrics   *metrics.Metrics
	log       *logger.Logger
}

func NewSensorService(driver SensorDriver, latest LatestReading, stateRepo repository.StateRepo, eventRepo repository.EventRepo, m *metrics.Metrics, log *logger.Logger) *SensorService {
	if log == nil {
		log = logger.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	return &SensorService{
		driver:    driver,
		latest:    latest,
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		metrics:   m,
		log:       log,
	}
}

// Enable turns the sensor on and logs ENABLE when the flag actually flipped.
func (s *SensorService) Enable(ctx context.Context) error {
	return s.setEnabled(ctx, true)
}

// Disable turns the sensor off and logs DISABLE when the flag actually flipped.
func (s *SensorService) Disable(ctx context.Context) error {
	return s.setEnabled(ctx, false)
}

func (s *SensorService) setEnabled(ctx context.Context, on bool) error {
	operatorID, _ := OperatorFromContext(ctx)
	changed, err := s.driver.SetEnabled(on)
	if err != nil {
		s.log.Errorw("sensor_set_enabled_failed", "enabled", on, "operator_id", operatorID, "err", err)
		s.appendEvent(ctx, models.EventError, "enable write failed", map[string]any{
			"target": on,
			"err":    err.Error(),
		})
		return err
	}
	s.metrics.SetEnabled(on)

	st, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	if err := s.stateRepo.Save(ctx, st); err != nil {
		return err
	}
	if !changed {
		return nil
	}

	typ, desc := models.EventDisable, "Sensor disabled"
	if on {
		typ, desc = models.EventEnable, "Sensor enabled"
	}
	s.log.Infow("sensor_enabled_changed", "enabled", on, "operator_id", operatorID)
	return s.eventRepo.Append(ctx, models.SensorEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  st.UpdatedAt,
		Type:        typ,
		Description: desc,
		OperatorID:  operatorID,
	})
}

// Calibrate re-runs the calibration loader, persists the outcome and logs a
// CALIBRATION event. A failed load is logged as ERROR and returned along with
// the persisted state.
func (s *SensorService) Calibrate(ctx context.Context) (models.SensorState, error) {
	cal, calErr := s.driver.Recalibrate()
	s.metrics.SetCalibrationApplied(calErr == nil && cal.Applied)

	st, err := s.snapshot(ctx)
	if err != nil {
		return models.SensorState{}, err
	}
	if err := s.stateRepo.Save(ctx, st); err != nil {
		return models.SensorState{}, err
	}

	if calErr != nil {
		s.appendEvent(ctx, models.EventError, "calibration failed", map[string]any{
			"kind": st.CalibrationError,
			"err":  calErr.Error(),
		})
		return st, calErr
	}
	s.appendEvent(ctx, models.EventCalibration, "calibration applied", calibrationMeta(cal))
	return st, nil
}

// RecordStartup persists the outcome of sensor construction (calibration and
// enable-on-start) and logs it.
func (s *SensorService) RecordStartup(ctx context.Context) error {
	cal, calErr := s.driver.Calibration()
	s.metrics.SetCalibrationApplied(calErr == nil && cal.Applied)
	s.metrics.SetEnabled(s.driver.Enabled())

	st, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	if err := s.stateRepo.Save(ctx, st); err != nil {
		return err
	}

	if calErr != nil {
		s.appendEvent(ctx, models.EventError, "calibration failed", map[string]any{
			"kind": st.CalibrationError,
			"err":  calErr.Error(),
		})
	} else {
		s.appendEvent(ctx, models.EventCalibration, "calibration applied", calibrationMeta(cal))
	}
	if st.Enabled {
		s.appendEvent(ctx, models.EventEnable, "Sensor enabled at startup", nil)
	}
	return nil
}

// snapshot merges the persisted state with the live driver state.
func (s *SensorService) snapshot(ctx context.Context) (models.SensorState, error) {
	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.SensorState{}, err
	}
	st.ID = sensorStateID
	st.Enabled = s.driver.Enabled()
	cal, calErr := s.driver.Calibration()
	applyCalibration(&st, cal, calErr)
	if s.latest != nil {
		if r, ok := s.latest.Latest(); ok {
			st.LastReading = &r
		}
	}
	st.UpdatedAt = time.Now().UTC()
	return st, nil
}

// appendEvent writes a best-effort log entry attributed to the operator in
// ctx, if any; failures are only logged.
func (s *SensorService) appendEvent(ctx context.Context, typ, desc string, meta map[string]any) {
	operatorID, _ := OperatorFromContext(ctx)
	ev := models.SensorEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: desc,
		OperatorID:  operatorID,
	}
	if meta != nil {
		ev.Metadata = meta
	}
	if err := s.eventRepo.Append(ctx, ev); err != nil {
		s.log.Errorw("event_append_failed", "type", typ, "err", err)
	}
}

func applyCalibration(st *models.SensorState, cal sensor.Calibration, err error) {
	if err == nil && cal.Applied {
		st.CalibrationStatus = models.CalibrationApplied
		st.CalibrationFactor = cal.Factor
		st.CalibrationError = ""
		return
	}
	st.CalibrationStatus = models.CalibrationSkipped
	st.CalibrationFactor = 0
	st.CalibrationError = calibrationErrorKind(err)
}

func calibrationErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var ce *sensor.CalibrationError
	if errors.As(err, &ce) {
		return ce.Kind.String()
	}
	return err.Error()
}

func calibrationMeta(cal sensor.Calibration) map[string]any {
	return map[string]any{
		"factor": strconv.FormatInt(int64(cal.Factor), 10),
		"record": cal.Record,
	}
}
