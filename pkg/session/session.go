package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kioskworks/go-booth/pkg/capture"
	"github.com/kioskworks/go-booth/pkg/compose"
	"github.com/kioskworks/go-booth/pkg/template"
)

// Session is the single live unit of work, created when the user leaves
// Attract and discarded when the flow returns there. It is owned exclusively
// by the Controller; background tasks get the ID and the context, never the
// struct.
type Session struct {
	ID       string
	Template *template.Template // borrowed from the catalog, fixed at countdown

	Captured []capture.Photo
	Selected []int // indices into Captured, in selection order
	Cursor   int

	Filter    compose.Filter
	Composite *compose.Composite

	StartedAt    time.Time
	LastActivity time.Time

	// attempts counts consecutive failures of the current shot.
	attempts int

	// ctx is cancelled when the session is discarded, as best-effort
	// cancellation of in-flight capture/print work.
	ctx    context.Context
	cancel context.CancelFunc
}

func newSession(now time.Time) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:           uuid.NewString(),
		StartedAt:    now,
		LastActivity: now,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// discard cancels in-flight work; the photos on disk are left to the
// filesystem lifecycle outside this core.
func (s *Session) discard() {
	s.cancel()
}

// CapturedPaths returns the captured photo paths in capture order.
func (s *Session) CapturedPaths() []string {
	paths := make([]string, len(s.Captured))
	for i, p := range s.Captured {
		paths[i] = p.Path
	}
	return paths
}
