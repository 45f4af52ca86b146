package sensor

import (
	"encoding/binary"
	"fmt"
)

// Linux input event types handled by the aggregator.
const (
	EvSyn = 0x00
	EvKey = 0x01
	EvRel = 0x02
	EvAbs = 0x03
)

// Relative axis codes the light sensor driver reports on.
const (
	RelWheel = 0x08
	RelMisc  = 0x09
)

// struct input_event sizes: 64-bit timeval vs 32-bit timeval.
const (
	EventSize64 = 24
	EventSize32 = 16
)

// Timeval mirrors the kernel timestamp embedded in each input event.
type Timeval struct {
	Sec  int64
	Usec int64
}

// RawInputEvent is one decoded struct input_event.
type RawInputEvent struct {
	Time  Timeval
	Type  uint16
	Code  uint16
	Value int32
}

func (e RawInputEvent) String() string {
	return fmt.Sprintf("type=%d code=%d value=%d", e.Type, e.Code, e.Value)
}

func validEventSize(size int) bool {
	return size == EventSize64 || size == EventSize32
}

// decodeEvent parses a little-endian input_event of the given size.
func decodeEvent(b []byte, size int) RawInputEvent {
	var ev RawInputEvent
	if size == EventSize64 {
		ev.Time.Sec = int64(binary.LittleEndian.Uint64(b[0:8]))
		ev.Time.Usec = int64(binary.LittleEndian.Uint64(b[8:16]))
		ev.Type = binary.LittleEndian.Uint16(b[16:18])
		ev.Code = binary.LittleEndian.Uint16(b[18:20])
		ev.Value = int32(binary.LittleEndian.Uint32(b[20:24]))
		return ev
	}
	ev.Time.Sec = int64(int32(binary.LittleEndian.Uint32(b[0:4])))
	ev.Time.Usec = int64(int32(binary.LittleEndian.Uint32(b[4:8])))
	ev.Type = binary.LittleEndian.Uint16(b[8:10])
	ev.Code = binary.LittleEndian.Uint16(b[10:12])
	ev.Value = int32(binary.LittleEndian.Uint32(b[12:16]))
	return ev
}

// EncodeEvent is the inverse of decodeEvent. Used to build fixtures and by
// tools that replay captured streams.
func EncodeEvent(ev RawInputEvent, size int) []byte {
	b := make([]byte, size)
	if size == EventSize64 {
		binary.LittleEndian.PutUint64(b[0:8], uint64(ev.Time.Sec))
		binary.LittleEndian.PutUint64(b[8:16], uint64(ev.Time.Usec))
		binary.LittleEndian.PutUint16(b[16:18], ev.Type)
		binary.LittleEndian.PutUint16(b[18:20], ev.Code)
		binary.LittleEndian.PutUint32(b[20:24], uint32(ev.Value))
		return b
	}
	binary.LittleEndian.PutUint32(b[0:4], uint32(int32(ev.Time.Sec)))
	binary.LittleEndian.PutUint32(b[4:8], uint32(int32(ev.Time.Usec)))
	binary.LittleEndian.PutUint16(b[8:10], ev.Type)
	binary.LittleEndian.PutUint16(b[10:12], ev.Code)
	binary.LittleEndian.PutUint32(b[12:16], uint32(ev.Value))
	return b
}
