package sensor

import (
	"errors"
	"io"

	"lightsensord/internal/logger"
	"lightsensord/internal/models"
)

// Config wires a LightSensor to its endpoints.
type Config struct {
	Calibration    CalibrationPaths
	EnablePath     string
	Channels       ChannelMap
	EnableOnStart  bool
	InitialReading bool
}

// LightSensor is one ambient light sensor: calibration at construction, then
// enable/disable and polling. It is not safe for concurrent use.
type LightSensor struct {
	enabler    *EnableController
	aggregator *Aggregator
	calibrator *CalibrationLoader
	source     EventSource
	log        *logger.Logger

	calibration    Calibration
	calibrationErr error
}

// New builds the sensor, applies the persisted calibration and, when
// configured, enables the device. Calibration and enable failures are logged
// and kept; only an invalid channel map fails construction.
func New(cfg Config, control ControlInterface, source EventSource, clock Clock, log *logger.Logger) (*LightSensor, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.Channels == (ChannelMap{}) {
		cfg.Channels = DefaultChannels
	}
	enabler := NewEnableController(control, cfg.EnablePath)

	opts := []AggregatorOption{WithChannels(cfg.Channels), WithAggregatorLogger(log)}
	if cfg.InitialReading {
		opts = append(opts, WithInitialReading())
	}
	agg, err := NewAggregator(source, clock, enabler, opts...)
	if err != nil {
		return nil, err
	}

	s := &LightSensor{
		enabler:    enabler,
		aggregator: agg,
		calibrator: NewCalibrationLoader(control, cfg.Calibration, log),
		source:     source,
		log:        log,
	}

	s.Recalibrate()

	if cfg.EnableOnStart {
		if err := s.SetEnabled(true); err != nil {
			log.Warnw("sensor_enable_on_start_failed", "err", err)
		}
	}
	return s, nil
}

// Recalibrate re-runs the calibration loader and records its outcome.
func (s *LightSensor) Recalibrate() (Calibration, error) {
	s.calibration, s.calibrationErr = s.calibrator.Load()
	if s.calibrationErr != nil {
		s.log.Warnw("calibration_load_failed", "err", s.calibrationErr)
	}
	return s.calibration, s.calibrationErr
}

// Calibration returns the last calibration outcome.
func (s *LightSensor) Calibration() (Calibration, error) {
	return s.calibration, s.calibrationErr
}

// Poll delegates to the aggregator.
func (s *LightSensor) Poll(maxCount int) ([]models.Reading, error) {
	return s.aggregator.Poll(maxCount)
}

// SetEnabled delegates to the enable controller.
func (s *LightSensor) SetEnabled(enabled bool) error {
	return s.enabler.SetEnabled(enabled)
}

func (s *LightSensor) Enabled() bool { return s.enabler.Enabled() }

// SetDelay is accepted for interface parity; the chip samples at a fixed rate.
func (s *LightSensor) SetDelay(ns int64) error { return nil }

// HasPendingEvents reports whether a Poll would return the initial reading
// without touching the device.
func (s *LightSensor) HasPendingEvents() bool {
	return s.aggregator.HasPendingInitial()
}

func (s *LightSensor) Stats() Stats { return s.aggregator.Stats() }

// Close disables the device if it is on, then closes the event source when it
// is closable. Both errors are reported.
func (s *LightSensor) Close() error {
	var errs []error
	if s.enabler.Enabled() {
		if err := s.enabler.SetEnabled(false); err != nil {
			errs = append(errs, err)
		}
	}
	if c, ok := s.source.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
