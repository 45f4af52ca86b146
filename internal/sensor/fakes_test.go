package sensor

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

// ---- Test doubles ----

// sliceSource is an EventSource over a fixed slice; Fill never adds anything.
type sliceSource struct {
	events    []RawInputEvent
	pos       int
	fillErr   error
	fillCalls int
}

func (s *sliceSource) Fill() (int, error) {
	s.fillCalls++
	if s.fillErr != nil {
		return 0, s.fillErr
	}
	return 0, nil
}

func (s *sliceSource) ReadEvent() (RawInputEvent, bool) {
	if s.pos >= len(s.events) {
		return RawInputEvent{}, false
	}
	return s.events[s.pos], true
}

func (s *sliceSource) Next() { s.pos++ }

func (s *sliceSource) push(evs ...RawInputEvent) { s.events = append(s.events, evs...) }

type fixedClock struct{ now int64 }

func (c fixedClock) Now() int64                   { return c.now }
func (c fixedClock) FromTimeval(tv Timeval) int64 { return timevalToNano(tv) }

type flag struct{ on bool }

func (f *flag) Enabled() bool { return f.on }

// recordingControl wraps a ControlInterface and records every call.
type recordingControl struct {
	inner    ControlInterface
	ops      []string
	writes   map[string][][]byte
	writeErr error
}

func newRecordingControl(inner ControlInterface) *recordingControl {
	return &recordingControl{inner: inner, writes: map[string][][]byte{}}
}

func (r *recordingControl) Truncate(path string) error {
	r.ops = append(r.ops, "truncate "+path)
	return r.inner.Truncate(path)
}

func (r *recordingControl) ReadFile(path string) ([]byte, error) {
	r.ops = append(r.ops, "read "+path)
	return r.inner.ReadFile(path)
}

func (r *recordingControl) WriteFile(path string, data []byte) error {
	r.ops = append(r.ops, "write "+path)
	if r.writeErr != nil {
		return r.writeErr
	}
	r.writes[path] = append(r.writes[path], append([]byte(nil), data...))
	return r.inner.WriteFile(path, data)
}

// ---- Helpers ----

const (
	testSysfsDir  = "/sys/bus/i2c/devices/i2c-5/5-0029"
	testCalFile   = testSysfsDir + "/cal"
	testCalAttr   = testSysfsDir + "/calibration"
	testEnablePth = testSysfsDir + "/enable"
)

var testPaths = CalibrationPaths{
	File:             testCalFile,
	ValidateEndpoint: testCalAttr,
	FactorEndpoint:   testCalAttr,
}

var errBoom = errors.New("boom")

// newSysfs returns an in-memory sysfs with the calibration and enable
// attributes present. calRecord is written to the cal file unless empty.
func newSysfs(t *testing.T, calRecord string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll(testSysfsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, p := range []string{testCalAttr, testEnablePth} {
		if err := afero.WriteFile(fs, p, nil, 0o644); err != nil {
			t.Fatalf("create %s: %v", p, err)
		}
	}
	if calRecord != "" {
		if err := afero.WriteFile(fs, testCalFile, []byte(calRecord), 0o644); err != nil {
			t.Fatalf("write cal: %v", err)
		}
	}
	return fs
}

func rel(code uint16, v int32) RawInputEvent {
	return RawInputEvent{Type: EvRel, Code: code, Value: v}
}

func syn(sec, usec int64) RawInputEvent {
	return RawInputEvent{Type: EvSyn, Time: Timeval{Sec: sec, Usec: usec}}
}

func readFile(t *testing.T, fs afero.Fs, path string) []byte {
	t.Helper()
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return b
}
