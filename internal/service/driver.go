package service

import (
	"errors"
	"sync"

	"lightsensord/internal/models"
	"lightsensord/internal/sensor"
)

// ErrDriverClosed is returned by calls made after Close.
var ErrDriverClosed = errors.New("sensor driver closed")

// Driver serialises access to a LightSensor shared by the poller and the
// control API.
type Driver struct {
	mu     sync.Mutex
	s      *sensor.LightSensor
	closed bool
}

var _ SensorDriver = (*Driver)(nil)

func NewDriver(s *sensor.LightSensor) *Driver {
	return &Driver{s: s}
}

func (d *Driver) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed && d.s.Enabled()
}

// SetEnabled switches the sensor and reports whether the flag flipped. The
// read and the write happen under one lock, so of two concurrent Enable
// calls only one sees a change.
func (d *Driver) SetEnabled(on bool) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false, ErrDriverClosed
	}
	was := d.s.Enabled()
	if err := d.s.SetEnabled(on); err != nil {
		return false, err
	}
	return was != d.s.Enabled(), nil
}

func (d *Driver) Recalibrate() (sensor.Calibration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return sensor.Calibration{}, ErrDriverClosed
	}
	return d.s.Recalibrate()
}

func (d *Driver) Calibration() (sensor.Calibration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.s.Calibration()
}

func (d *Driver) Poll(maxCount int) ([]models.Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDriverClosed
	}
	return d.s.Poll(maxCount)
}

func (d *Driver) HasPendingEvents() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed && d.s.HasPendingEvents()
}

func (d *Driver) Stats() sensor.Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.s.Stats()
}

// Close disables the sensor and closes the input device. Later calls that
// would touch the device fail with ErrDriverClosed; a second Close is a no-op.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.s.Close()
}
