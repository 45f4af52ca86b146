package sensor

import "fmt"

// EnableController owns the sensor's enabled flag and its sysfs attribute.
type EnableController struct {
	control ControlInterface
	path    string
	enabled bool
}

var _ EnabledFlag = (*EnableController)(nil)

// NewEnableController starts in the disabled state; nothing is written.
func NewEnableController(control ControlInterface, path string) *EnableController {
	return &EnableController{control: control, path: path}
}

// Enabled implements EnabledFlag.
func (c *EnableController) Enabled() bool { return c.enabled }

// SetEnabled writes '1' or '0' to the enable attribute on a real transition.
// Repeating the current state is a no-op. On a failed write the flag keeps its
// old value and the hardware state is unknown; callers may retry.
func (c *EnableController) SetEnabled(target bool) error {
	if target == c.enabled {
		return nil
	}
	buf := []byte{'0', 0}
	if target {
		buf[0] = '1'
	}
	if err := c.control.WriteFile(c.path, buf); err != nil {
		return fmt.Errorf("%w: %w", ErrEnableWriteFailed, err)
	}
	c.enabled = target
	return nil
}
