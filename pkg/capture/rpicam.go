package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

// Rpicam config validation bounds.
const (
	minStillTimeout = 1 * time.Second
	maxStillTimeout = 60 * time.Second

	defaultStillTimeout = 15 * time.Second
	defaultJPEGQuality  = 95
)

// RpicamConfig configures the rpicam-still driver.
type RpicamConfig struct {
	Width       int
	Height      int
	JPEGQuality int
	Timeout     time.Duration
}

// Rpicam captures stills by shelling out to the rpicam-still utility, the
// camera contract on the deployed Raspberry Pi device. The live preview on
// the Pi is handled by a separate process, so StartPreview/StopPreview only
// gate our own use of the camera.
type Rpicam struct {
	cfg RpicamConfig

	mu   sync.Mutex
	busy bool
}

// NewRpicam returns a driver with defaults applied for zero fields.
func NewRpicam(cfg RpicamConfig) *Rpicam {
	if cfg.Width <= 0 {
		cfg.Width = 1920
	}
	if cfg.Height <= 0 {
		cfg.Height = 1080
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = defaultJPEGQuality
	}
	if cfg.Timeout < minStillTimeout || cfg.Timeout > maxStillTimeout {
		cfg.Timeout = defaultStillTimeout
	}
	return &Rpicam{cfg: cfg}
}

// Capture runs rpicam-still and waits for the file to land.
func (r *Rpicam) Capture(ctx context.Context, dest string) error {
	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return wrapErr("rpicam", errors.New("capture already in flight"))
	}
	r.busy = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.busy = false
		r.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "rpicam-still",
		"-n",
		"-o", dest,
		"--width", strconv.Itoa(r.cfg.Width),
		"--height", strconv.Itoa(r.cfg.Height),
		"-t", "1",
		"-q", strconv.Itoa(r.cfg.JPEGQuality),
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return wrapErr("rpicam", ErrCaptureTimeout)
		}
		return wrapErr("rpicam", fmt.Errorf("rpicam-still: %v: %s", err, out))
	}
	if _, err := os.Stat(dest); err != nil {
		return wrapErr("rpicam", fmt.Errorf("no output file: %w", err))
	}
	return nil
}

// StartPreview is a no-op; the Pi preview pipeline is external.
func (r *Rpicam) StartPreview() error { return nil }

// StopPreview is a no-op for the same reason.
func (r *Rpicam) StopPreview() error { return nil }

// Frame is unavailable; the Pi serves its own preview stream.
func (r *Rpicam) Frame() ([]byte, error) { return nil, ErrNoFrame }

// Close releases nothing; the subprocess owns the device per call.
func (r *Rpicam) Close() error { return nil }
