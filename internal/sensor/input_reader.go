package sensor

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// EventSource is the buffered raw-event cursor consumed by the Aggregator.
// The cursor survives between Poll calls, so events left over when the
// caller's budget runs out are served first next time.
type EventSource interface {
	// Fill reads whatever the device has ready into free buffer space and
	// returns the number of events added.
	Fill() (int, error)
	// ReadEvent returns the event under the cursor without consuming it.
	ReadEvent() (RawInputEvent, bool)
	// Next consumes the event under the cursor.
	Next()
}

// InputReader is a fixed-capacity circular buffer of input events read from
// an evdev node (or any reader producing the same byte layout).
type InputReader struct {
	r         io.Reader
	eventSize int
	ring      []RawInputEvent
	head      int
	count     int
	buf       []byte
	partial   []byte
}

var _ EventSource = (*InputReader)(nil)

// NewInputReader returns a reader holding at most capacity events.
func NewInputReader(r io.Reader, capacity, eventSize int) (*InputReader, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("input reader capacity %d: %w", capacity, ErrInvalidArgument)
	}
	if !validEventSize(eventSize) {
		return nil, fmt.Errorf("unsupported input_event size %d", eventSize)
	}
	return &InputReader{
		r:         r,
		eventSize: eventSize,
		ring:      make([]RawInputEvent, capacity),
		buf:       make([]byte, capacity*eventSize),
	}, nil
}

// Fill implements EventSource. A device with nothing ready (EAGAIN) or at EOF
// adds zero events without error.
func (ir *InputReader) Fill() (int, error) {
	free := len(ir.ring) - ir.count
	if free == 0 {
		return 0, nil
	}
	want := free*ir.eventSize - len(ir.partial)
	n, err := ir.r.Read(ir.buf[:want])
	if err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, unix.EAGAIN) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	if n <= 0 {
		return 0, nil
	}

	data := append(ir.partial, ir.buf[:n]...)
	added := 0
	for len(data) >= ir.eventSize {
		tail := (ir.head + ir.count) % len(ir.ring)
		ir.ring[tail] = decodeEvent(data[:ir.eventSize], ir.eventSize)
		ir.count++
		added++
		data = data[ir.eventSize:]
	}
	ir.partial = append(ir.partial[:0], data...)
	return added, nil
}

// ReadEvent implements EventSource.
func (ir *InputReader) ReadEvent() (RawInputEvent, bool) {
	if ir.count == 0 {
		return RawInputEvent{}, false
	}
	return ir.ring[ir.head], true
}

// Next implements EventSource.
func (ir *InputReader) Next() {
	if ir.count == 0 {
		return
	}
	ir.head = (ir.head + 1) % len(ir.ring)
	ir.count--
}

// Buffered reports how many decoded events are waiting.
func (ir *InputReader) Buffered() int { return ir.count }

// Close closes the underlying reader when it is closable.
func (ir *InputReader) Close() error {
	if c, ok := ir.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
