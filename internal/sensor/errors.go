package sensor

import "errors"

var (
	// ErrInvalidArgument is returned by Poll for a non-positive capacity.
	ErrInvalidArgument = errors.New("invalid argument: poll capacity must be >= 1")
	// ErrReadFailed wraps failures of the raw event source.
	ErrReadFailed = errors.New("read input events")
	// ErrEnableWriteFailed means the enable flag may not match the hardware.
	ErrEnableWriteFailed = errors.New("write enable flag")
	// ErrDeviceGone is reported when the input node hangs up.
	ErrDeviceGone = errors.New("input device gone")
	// ErrChannelConflict rejects a channel map that routes one code twice.
	ErrChannelConflict = errors.New("ambient and white channels share a code")
)
