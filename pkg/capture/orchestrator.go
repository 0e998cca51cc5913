package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kioskworks/go-booth/internal/log"
)

// Orchestrator issues single still captures against the camera and turns
// them into Photos under the photo directory. It holds no session state;
// the controller guarantees at most one Capture call is in flight.
type Orchestrator struct {
	cam Camera
	dir string

	// now is split out so tests get stable paths.
	now func() time.Time
}

// NewOrchestrator returns an orchestrator writing into dir.
func NewOrchestrator(cam Camera, dir string) *Orchestrator {
	return &Orchestrator{cam: cam, dir: dir, now: time.Now}
}

// Capture takes shot number seq (1-based within the session) and returns the
// resulting Photo. The preview is stopped for the exposure and resumed
// afterwards regardless of outcome.
func (o *Orchestrator) Capture(ctx context.Context, seq int) (Photo, error) {
	ts := o.now()
	dest := filepath.Join(o.dir, ts.Format("2006/01/02"),
		fmt.Sprintf("%s_%d.jpg", ts.Format("150405"), seq))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Photo{}, fmt.Errorf("capture: mkdir: %w", err)
	}

	if err := o.cam.StopPreview(); err != nil {
		log.Warn("stop preview before capture", "err", err)
	}
	err := o.cam.Capture(ctx, dest)
	if rerr := o.cam.StartPreview(); rerr != nil {
		log.Warn("resume preview after capture", "err", rerr)
	}
	if err != nil {
		return Photo{}, err
	}
	return Photo{Path: dest, CapturedAt: ts}, nil
}

// Frame proxies the camera preview frame for the operator surface.
func (o *Orchestrator) Frame() ([]byte, error) {
	return o.cam.Frame()
}
