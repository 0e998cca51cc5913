package printer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/kioskworks/go-booth/pkg/compose"
)

const defaultSubmitTimeout = 30 * time.Second

// runner executes the spooler command; split out so tests can fake lp.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Dispatcher hands composed sheets to the print spooler. It writes the JPEG
// to the photo directory first so the spooler reads a stable file, then runs
// lp against the configured queue. No retry happens here: a failed print
// goes back to the user in Review.
type Dispatcher struct {
	dir     string
	timeout time.Duration
	run     runner
	now     func() time.Time
}

// NewDispatcher returns a dispatcher spooling from dir.
func NewDispatcher(dir string) *Dispatcher {
	return &Dispatcher{
		dir:     dir,
		timeout: defaultSubmitTimeout,
		run:     execRunner,
		now:     time.Now,
	}
}

// Submit writes the composite (if not yet on disk) and prints it to the
// queue in cfg. An empty queue name fails fast with ErrNotConfigured.
func (d *Dispatcher) Submit(ctx context.Context, comp *compose.Composite, cfg Config) error {
	if !cfg.Configured() {
		return ErrNotConfigured
	}

	if comp.Path == "" {
		ts := d.now()
		path := filepath.Join(d.dir, ts.Format("2006/01/02"),
			fmt.Sprintf("A4_%s.jpg", ts.Format("150405")))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("printer: mkdir: %w", err)
		}
		if err := os.WriteFile(path, comp.JPEG, 0o644); err != nil {
			return fmt.Errorf("printer: write sheet: %w", err)
		}
		comp.Path = path
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	args := []string{
		"-d", cfg.QueueName,
		"-o", "media=A4.Borderless",
		"-o", "fit-to-page=false",
		comp.Path,
	}
	out, err := d.run(ctx, "lp", args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &SpoolerError{Queue: cfg.QueueName, Err: ErrSpoolerTimeout}
		}
		return &SpoolerError{Queue: cfg.QueueName, Output: string(out), Err: ErrSpoolerRejected}
	}
	return nil
}
