package sensor

import (
	"fmt"
	"strconv"
	"strings"

	"lightsensord/internal/logger"
)

// CalibrationErrorKind enumerates why a calibration was not applied.
type CalibrationErrorKind int

const (
	KindControlInterfaceUnavailable CalibrationErrorKind = iota + 1
	KindNoCalibrationData
	KindMalformedCalibrationData
	KindChecksumMismatch
	KindControlInterfaceWriteFailed
)

func (k CalibrationErrorKind) String() string {
	switch k {
	case KindControlInterfaceUnavailable:
		return "CONTROL_INTERFACE_UNAVAILABLE"
	case KindNoCalibrationData:
		return "NO_CALIBRATION_DATA"
	case KindMalformedCalibrationData:
		return "MALFORMED_CALIBRATION_DATA"
	case KindChecksumMismatch:
		return "CHECKSUM_MISMATCH"
	case KindControlInterfaceWriteFailed:
		return "CONTROL_INTERFACE_WRITE_FAILED"
	default:
		return "UNKNOWN"
	}
}

// CalibrationError is returned by CalibrationLoader.Load. errors.Is matches
// on Kind, so callers can compare against the Err* values below.
type CalibrationError struct {
	Kind CalibrationErrorKind
	Path string
	Err  error
}

func (e *CalibrationError) Error() string {
	msg := "calibration: " + strings.ToLower(strings.ReplaceAll(e.Kind.String(), "_", " "))
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CalibrationError) Unwrap() error { return e.Err }

func (e *CalibrationError) Is(target error) bool {
	t, ok := target.(*CalibrationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrControlInterfaceUnavailable = &CalibrationError{Kind: KindControlInterfaceUnavailable}
	ErrNoCalibrationData           = &CalibrationError{Kind: KindNoCalibrationData}
	ErrMalformedCalibrationData    = &CalibrationError{Kind: KindMalformedCalibrationData}
	ErrChecksumMismatch            = &CalibrationError{Kind: KindChecksumMismatch}
	ErrControlInterfaceWriteFailed = &CalibrationError{Kind: KindControlInterfaceWriteFailed}
)

// CalibrationRecord holds c0..c3 (factor bytes, least significant first) and
// the c4 checksum.
type CalibrationRecord [5]int32

// Checksum is the OR of the four factor components.
func (r CalibrationRecord) Checksum() int32 {
	return r[0] | r[1] | r[2] | r[3]
}

// Valid reports whether c4 matches the checksum.
func (r CalibrationRecord) Valid() bool {
	return r.Checksum() == r[4]
}

// Factor reassembles the 32-bit calibration factor.
func (r CalibrationRecord) Factor() int32 {
	return r[3]<<24 | r[2]<<16 | r[1]<<8 | r[0]
}

// ParseCalibrationRecord reads five whitespace-separated decimal integers.
// Parsing stops at the first token that is not an integer; trailing tokens
// after the fifth are ignored. It returns how many values were parsed.
func ParseCalibrationRecord(data []byte) (CalibrationRecord, int, error) {
	var rec CalibrationRecord
	n := 0
	for _, tok := range strings.Fields(string(data)) {
		if n == len(rec) {
			break
		}
		v, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			break
		}
		rec[n] = int32(v)
		n++
	}
	if n < len(rec) {
		return rec, n, fmt.Errorf("expected %d integers, got %d", len(rec), n)
	}
	return rec, n, nil
}

// factorCommandLen is the size of the buffer the driver's calibration
// attribute expects; the whole buffer is written, zero padded.
const factorCommandLen = 20

// FactorCommand formats "<factor> -setcv" into the fixed command buffer.
func FactorCommand(factor int32) [factorCommandLen]byte {
	var buf [factorCommandLen]byte
	copy(buf[:factorCommandLen-1], fmt.Sprintf("%d -setcv", factor))
	return buf
}

// CalibrationPaths locates the persisted record and the driver endpoints.
type CalibrationPaths struct {
	File             string
	ValidateEndpoint string
	FactorEndpoint   string
}

// Calibration is the outcome of a Load.
type Calibration struct {
	Record  CalibrationRecord
	Factor  int32
	Applied bool
}

// CalibrationLoader applies the persisted calibration factor to the chip.
type CalibrationLoader struct {
	control ControlInterface
	paths   CalibrationPaths
	log     *logger.Logger
}

// NewCalibrationLoader returns a loader; log may be nil.
func NewCalibrationLoader(control ControlInterface, paths CalibrationPaths, log *logger.Logger) *CalibrationLoader {
	if log == nil {
		log = logger.NewNop()
	}
	return &CalibrationLoader{control: control, paths: paths, log: log}
}

// Load validates and writes the calibration factor. Every error is a
// *CalibrationError and none of them is fatal: the sensor keeps running on
// factory defaults.
func (l *CalibrationLoader) Load() (Calibration, error) {
	var cal Calibration

	if err := l.control.Truncate(l.paths.ValidateEndpoint); err != nil {
		return cal, &CalibrationError{Kind: KindControlInterfaceUnavailable, Path: l.paths.ValidateEndpoint, Err: err}
	}

	data, err := l.control.ReadFile(l.paths.File)
	if err != nil {
		return cal, &CalibrationError{Kind: KindNoCalibrationData, Path: l.paths.File, Err: err}
	}

	rec, _, err := ParseCalibrationRecord(data)
	if err != nil {
		return cal, &CalibrationError{Kind: KindMalformedCalibrationData, Path: l.paths.File, Err: err}
	}
	cal.Record = rec
	cal.Factor = rec.Factor()
	l.log.Debugw("calibration_record", "factor", cal.Factor, "checksum", rec.Checksum(), "expected", rec[4])

	if !rec.Valid() {
		return cal, &CalibrationError{
			Kind: KindChecksumMismatch,
			Path: l.paths.File,
			Err:  fmt.Errorf("c4=%d, c0|c1|c2|c3=%d", rec[4], rec.Checksum()),
		}
	}

	buf := FactorCommand(cal.Factor)
	if err := l.control.WriteFile(l.paths.FactorEndpoint, buf[:]); err != nil {
		return cal, &CalibrationError{Kind: KindControlInterfaceWriteFailed, Path: l.paths.FactorEndpoint, Err: err}
	}
	cal.Applied = true
	l.log.Infow("calibration_applied", "from", l.paths.File, "to", l.paths.FactorEndpoint, "factor", cal.Factor)
	return cal, nil
}
