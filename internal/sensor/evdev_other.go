//go:build !linux

package sensor

import (
	"errors"
	"time"
)

// ErrUnsupportedPlatform is returned where evdev is not available.
var ErrUnsupportedPlatform = errors.New("evdev input devices require linux")

// InputDevice is unavailable off linux; OpenInputDevice always fails.
type InputDevice struct {
	path string
}

func OpenInputDevice(path string) (*InputDevice, error) {
	return nil, ErrUnsupportedPlatform
}

func (d *InputDevice) Read(p []byte) (int, error) { return 0, ErrUnsupportedPlatform }

func (d *InputDevice) WaitReadable(timeout time.Duration) (bool, error) {
	return false, ErrUnsupportedPlatform
}

func (d *InputDevice) Close() error { return nil }

func (d *InputDevice) Path() string { return d.path }
