//go:build linux

package sensor

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request encoding (Linux _IOC macro).
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocWrite = 1
)

func ioc(dir, typ, nr, size uint32) uint {
	return uint((dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift))
}

// EVIOCSCLOCKID = _IOW('E', 0xa0, int)
func evioCSClockID() uint {
	return ioc(iocWrite, uint32('E'), 0xa0, uint32(unsafe.Sizeof(int32(0))))
}

// InputDevice is a non-blocking evdev node. Read returns EAGAIN when empty;
// WaitReadable is the only call that blocks.
type InputDevice struct {
	fd   int
	path string
}

// OpenInputDevice opens path and switches event timestamps to
// CLOCK_MONOTONIC so they line up with MonotonicClock.
func OpenInputDevice(path string) (*InputDevice, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open input device %s: %w", path, err)
	}
	if err := unix.IoctlSetPointerInt(fd, evioCSClockID(), unix.CLOCK_MONOTONIC); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("set clock id on %s: %w", path, err)
	}
	return &InputDevice{fd: fd, path: path}, nil
}

func (d *InputDevice) Read(p []byte) (int, error) {
	n, err := unix.Read(d.fd, p)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// WaitReadable blocks up to timeout for input. It returns false on timeout
// or signal interruption.
func (d *InputDevice) WaitReadable(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, fmt.Errorf("poll %s: %w", d.path, err)
	}
	if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		return false, fmt.Errorf("%s: %w", d.path, ErrDeviceGone)
	}
	return n > 0, nil
}

func (d *InputDevice) Close() error {
	return unix.Close(d.fd)
}

// Path returns the device node path.
func (d *InputDevice) Path() string { return d.path }
