package input

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// SysfsPins reads button state through the kernel's sysfs GPIO interface.
// The pins are exported and set to input by the device's provisioning; this
// code only samples them.
type SysfsPins struct {
	root string
}

// NewSysfsPins returns a reader over /sys/class/gpio.
func NewSysfsPins() *SysfsPins {
	return &SysfsPins{root: "/sys/class/gpio"}
}

// Read reports whether the pin is high.
func (s *SysfsPins) Read(pin int) (bool, error) {
	path := filepath.Join(s.root, fmt.Sprintf("gpio%d", pin), "value")
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("input: read pin %d: %w", pin, err)
	}
	v := bytes.TrimSpace(data)
	return len(v) > 0 && v[0] == '1', nil
}

// Close is a no-op; sysfs handles are not held open.
func (s *SysfsPins) Close() error { return nil }
