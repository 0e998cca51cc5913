// Package capture drives the still camera. The session controller requests
// one shot at a time; drivers implement the Camera interface and never touch
// session state.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for camera failures.
var (
	// ErrCameraUnavailable is returned when the camera cannot be opened.
	ErrCameraUnavailable = errors.New("capture: camera unavailable")

	// ErrCaptureTimeout is returned when a shot exceeds its deadline.
	ErrCaptureTimeout = errors.New("capture: hardware timeout")

	// ErrNoFrame is returned when the preview has no frame yet.
	ErrNoFrame = errors.New("capture: no frame available")
)

// Photo is one captured still, referenced by its on-disk path.
type Photo struct {
	Path       string    `json:"path"`
	CapturedAt time.Time `json:"captured_at"`
}

// Camera is the still camera collaborator. Capture writes a JPEG to dest and
// blocks until the exposure completes; it is the only long-running call.
// Preview control exists so the controller can stop the live stream before a
// still and resume it after. Frame returns the latest preview JPEG for the
// operator MJPEG surface; drivers without a preview return ErrNoFrame.
type Camera interface {
	Capture(ctx context.Context, dest string) error
	StartPreview() error
	StopPreview() error
	Frame() ([]byte, error)
	Close() error
}

// DriverError wraps an error with the driver name for logs.
type DriverError struct {
	Driver string
	Err    error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("capture [%s]: %v", e.Driver, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }

// wrapErr tags an error with its driver, passing nil through.
func wrapErr(driver string, err error) error {
	if err == nil {
		return nil
	}
	return &DriverError{Driver: driver, Err: err}
}
