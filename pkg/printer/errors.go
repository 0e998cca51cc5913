package printer

import (
	"errors"
	"fmt"
)

// Sentinel errors for print failures. The controller surfaces these in
// Review; the dispatcher never retries on its own.
var (
	// ErrNotConfigured means no print queue is set; the spooler is not
	// contacted at all.
	ErrNotConfigured = errors.New("printer: no queue configured")

	// ErrSpoolerRejected means the spooler refused the job.
	ErrSpoolerRejected = errors.New("printer: spooler rejected job")

	// ErrSpoolerTimeout means the spooler did not answer in time.
	ErrSpoolerTimeout = errors.New("printer: spooler timeout")
)

// SpoolerError carries the spooler's own words alongside the sentinel.
type SpoolerError struct {
	Queue  string
	Output string
	Err    error
}

func (e *SpoolerError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("printer [%s]: %v: %s", e.Queue, e.Err, e.Output)
	}
	return fmt.Sprintf("printer [%s]: %v", e.Queue, e.Err)
}

func (e *SpoolerError) Unwrap() error { return e.Err }
