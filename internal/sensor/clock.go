package sensor

import (
	"time"

	"golang.org/x/sys/unix"
)

// Clock converts kernel event times to nanoseconds and stamps synthetic
// readings.
type Clock interface {
	Now() int64
	FromTimeval(tv Timeval) int64
}

// MonotonicClock reads CLOCK_MONOTONIC, the clock evdev stamps events with
// once EVIOCSCLOCKID has selected it.
type MonotonicClock struct{}

// Now returns the current monotonic time in nanoseconds.
func (MonotonicClock) Now() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return time.Now().UnixNano()
	}
	return ts.Nano()
}

// FromTimeval implements Clock.
func (MonotonicClock) FromTimeval(tv Timeval) int64 {
	return timevalToNano(tv)
}

func timevalToNano(tv Timeval) int64 {
	return tv.Sec*int64(time.Second) + tv.Usec*int64(time.Microsecond)
}
