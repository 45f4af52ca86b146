package service

import (
	"context"
	"time"

	"lightsensord/internal/logger"
	"lightsensord/internal/metrics"
	"lightsensord/internal/models"
	"lightsensord/internal/repository"
	"lightsensord/internal/sensor"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Sensor exposes control operations: enable/disable and recalibration.
type Sensor interface {
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
	Calibrate(ctx context.Context) (models.SensorState, error)
}

// Monitoring exposes read-only state (enabled flag, calibration, last reading).
type Monitoring interface {
	GetState(ctx context.Context) (models.SensorState, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.SensorEvent, error)
}

// ReadingLog exposes stored readings.
type ReadingLog interface {
	List(ctx context.Context, f ReadingFilter) ([]models.Reading, error)
}

// Poller runs the background loop that drains the input device.
// Stop it by canceling ctx, then wait for the channel from Start.
type Poller interface {
	Run(ctx context.Context)
	Start(ctx context.Context) <-chan struct{}
	Latest() (models.Reading, bool)
}

// SensorDriver is the subset of the light sensor the services drive.
// Driver is the production implementation.
type SensorDriver interface {
	Enabled() bool
	// SetEnabled reports whether the enabled flag actually changed.
	SetEnabled(on bool) (bool, error)
	Recalibrate() (sensor.Calibration, error)
	Calibration() (sensor.Calibration, error)
	Poll(maxCount int) ([]models.Reading, error)
	HasPendingEvents() bool
	Stats() sensor.Stats
}

// Waiter blocks until the input device has data or the timeout passes.
type Waiter interface {
	WaitReadable(timeout time.Duration) (bool, error)
}

// LatestReading reports the most recent reading seen by the poller.
type LatestReading interface {
	Latest() (models.Reading, bool)
}

type Service struct {
	Sensor
	Monitoring
	EventLog
	ReadingLog
	Poller
	Authorization
}

// Deps carries the non-repository collaborators of the services.
type Deps struct {
	Driver      SensorDriver
	Waiter      Waiter
	Metrics     *metrics.Metrics
	Log         *logger.Logger
	SigningKey  string
	TokenTTL    time.Duration
	PollBatch   int
	PollTimeout time.Duration
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	poller := NewPollerService(deps.Driver, deps.Waiter, repos.ReadingRepo, deps.Metrics, log.Named("poller"), deps.PollBatch, deps.PollTimeout)

	return &Service{
		Sensor:        NewSensorService(deps.Driver, poller, repos.StateRepo, repos.EventRepo, deps.Metrics, log.Named("sensor")),
		Monitoring:    NewMonitoringService(repos.StateRepo, deps.Driver, poller),
		EventLog:      NewEventLogService(repos.EventRepo),
		ReadingLog:    NewReadingLogService(repos.ReadingRepo),
		Poller:        poller,
		Authorization: NewAuthService(repos.Auth, deps.SigningKey, deps.TokenTTL),
	}
}
