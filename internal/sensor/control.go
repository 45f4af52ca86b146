package sensor

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// ControlInterface is the byte-stream access the sensor needs to sysfs
// attributes and the persisted calibration file.
type ControlInterface interface {
	// Truncate opens path for writing in reset mode and closes it.
	Truncate(path string) error
	ReadFile(path string) ([]byte, error)
	// WriteFile opens an existing path read/write and writes data in full.
	WriteFile(path string, data []byte) error
}

// SysfsControl implements ControlInterface on an afero filesystem.
type SysfsControl struct {
	fs afero.Fs
}

var _ ControlInterface = (*SysfsControl)(nil)

// NewSysfsControl wraps fs; pass afero.NewOsFs() for real hardware.
func NewSysfsControl(fs afero.Fs) *SysfsControl {
	return &SysfsControl{fs: fs}
}

func (c *SysfsControl) Truncate(path string) error {
	f, err := c.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for write: %w", path, err)
	}
	return f.Close()
}

func (c *SysfsControl) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(c.fs, path)
}

func (c *SysfsControl) WriteFile(path string, data []byte) error {
	f, err := c.fs.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	n, err := f.Write(data)
	cerr := f.Close()
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if n < len(data) {
		return fmt.Errorf("write %s: %w", path, io.ErrShortWrite)
	}
	if cerr != nil {
		return fmt.Errorf("close %s: %w", path, cerr)
	}
	return nil
}
