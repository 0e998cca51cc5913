// Package session owns the photo session lifecycle. A single controller
// goroutine consumes one ordered event queue and is the only code that
// mutates the Session; camera and spooler work runs on background tasks
// that report back through the same queue.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kioskworks/go-booth/internal/log"
	"github.com/kioskworks/go-booth/pkg/capture"
	"github.com/kioskworks/go-booth/pkg/compose"
	"github.com/kioskworks/go-booth/pkg/printer"
	"github.com/kioskworks/go-booth/pkg/template"
)

// Config carries the controller's timing and retry knobs.
type Config struct {
	CountdownSeconds int           // per-shot countdown
	QuickReview      time.Duration // per-shot review pause
	Inactivity       time.Duration // session abandonment timeout
	CaptureRetries   int           // attempts per shot before giving up
}

// Capturer is the capture orchestrator as the controller sees it: one shot
// at a time, blocking, reporting a Photo or an error.
type Capturer interface {
	Capture(ctx context.Context, seq int) (capture.Photo, error)
}

// Printer submits a finished sheet to the spooler.
type Printer interface {
	Submit(ctx context.Context, comp *compose.Composite, cfg printer.Config) error
}

// PrinterConfigLoader reads the printer configuration; the controller reads
// it fresh at print time.
type PrinterConfigLoader interface {
	Load() (printer.Config, error)
}

// Composer builds a sheet from photo paths. Split out so tests can compose
// without touching the filesystem.
type Composer func(tpl *template.Template, paths []string, f compose.Filter) (*compose.Composite, error)

// Snapshot is the controller's externally visible state, published to the
// operator surface after every handled event.
type Snapshot struct {
	State        string   `json:"state"`
	SessionID    string   `json:"session_id,omitempty"`
	TemplateID   string   `json:"template_id"`
	TemplateName string   `json:"template_name"`
	Slots        int      `json:"slots"`
	Countdown    int      `json:"countdown"`
	Captured     int      `json:"captured"`
	CaptureGoal  int      `json:"capture_goal"`
	Cursor       int      `json:"cursor"`
	Selected     []int    `json:"selected"`
	Filter       string   `json:"filter"`
	Photos       []string `json:"photos,omitempty"`
	Composite    string   `json:"composite,omitempty"`
	LastError    string   `json:"last_error,omitempty"`
}

// Controller is the session state machine. All fields below mu are owned by
// the event loop; Snapshot is the only cross-goroutine read surface.
type Controller struct {
	cfg      Config
	catalog  *template.Catalog
	capturer Capturer
	spooler  Printer
	pcfg     PrinterConfigLoader
	composer Composer

	events chan Event

	// Event-loop-owned state.
	state        State
	sess         *Session
	tplIdx       int
	epoch        uint64
	countdown    int
	lastActivity time.Time
	lastError    string

	// Seams for tests: task dispatch, timer scheduling, clock.
	runTask  func(fn func() Event)
	schedule func(d time.Duration, ev Event)
	now      func() time.Time

	mu       sync.RWMutex
	snapshot Snapshot
	onChange func(Snapshot)
}

// New builds a controller in Attract. Run must be called to process events.
func New(cfg Config, catalog *template.Catalog, cap Capturer, pr Printer, pcfg PrinterConfigLoader) *Controller {
	c := &Controller{
		cfg:      cfg,
		catalog:  catalog,
		capturer: cap,
		spooler:  pr,
		pcfg:     pcfg,
		composer: compose.SheetFiles,
		events:   make(chan Event, 64),
		state:    StateAttract,
		now:      time.Now,
	}
	c.runTask = func(fn func() Event) {
		go func() { c.Dispatch(fn()) }()
	}
	c.schedule = func(d time.Duration, ev Event) {
		time.AfterFunc(d, func() { c.Dispatch(ev) })
	}
	c.lastActivity = c.now()
	c.publish()
	return c
}

// OnChange registers the snapshot listener (the web surface). Call before Run.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.onChange = fn
}

// Dispatch enqueues an event. Safe from any goroutine.
func (c *Controller) Dispatch(ev Event) {
	select {
	case c.events <- ev:
	default:
		// A full queue means something is spinning; drop rather than
		// block a hardware callback.
		log.Warn("event queue full, dropping event", "event", ev.Type.String())
	}
}

// Snapshot returns the last published state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Run processes events until ctx is done. The 1s ticker drives the
// inactivity check independent of the main event stream.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	log.Info("session controller started",
		"templates", c.catalog.Len(),
		"countdown_s", c.cfg.CountdownSeconds,
		"inactivity", c.cfg.Inactivity)

	for {
		select {
		case <-ctx.Done():
			if c.sess != nil {
				c.abort("shutdown")
			}
			log.Info("session controller stopped")
			return
		case ev := <-c.events:
			c.handle(ev)
		case <-ticker.C:
			if c.state != StateAttract && c.now().Sub(c.lastActivity) > c.cfg.Inactivity {
				c.handle(Event{Type: EventInactivity})
			}
		}
	}
}

// handle applies one event. Only the Run goroutine (and tests) may call it.
func (c *Controller) handle(ev Event) {
	// Stale timers: a tick from a superseded epoch is dead.
	if ev.Type == EventTick && ev.Epoch != c.epoch {
		return
	}
	// Stale compositions: a recompose supersedes earlier ones.
	if (ev.Type == EventComposeDone || ev.Type == EventComposeFailed) && ev.Epoch != c.epoch {
		return
	}
	// Stale completions: tasks spawned by a discarded session report into
	// the void.
	if ev.Session != "" && (c.sess == nil || c.sess.ID != ev.Session) {
		log.Debug("discarding completion for dead session", "event", ev.Type.String(), "session", ev.Session)
		return
	}

	if ev.Type != EventTick {
		c.lastActivity = c.now()
		if c.sess != nil {
			c.sess.LastActivity = c.lastActivity
		}
	}

	switch ev.Type {
	case EventCancel, EventInactivity:
		// Valid in every non-Attract state: unconditional return to
		// Attract, session discarded.
		if c.state != StateAttract {
			log.Info("session cancelled", "reason", ev.Type.String(), "state", c.state.String())
			c.toAttract()
		}
	default:
		c.dispatchState(ev)
	}

	c.publish()
}

func (c *Controller) dispatchState(ev Event) {
	switch c.state {
	case StateAttract:
		c.handleAttract(ev)
	case StateTemplate:
		c.handleTemplate(ev)
	case StateCountdown:
		c.handleCountdown(ev)
	case StateCapturing:
		c.handleCapturing(ev)
	case StateQuickReview:
		c.handleQuickReview(ev)
	case StateSelection:
		c.handleSelection(ev)
	case StateReview:
		c.handleReview(ev)
	case StatePrinting:
		c.handlePrinting(ev)
	}
}

func (c *Controller) handleAttract(ev Event) {
	switch ev.Type {
	case EventStart, EventShutter, EventEnter:
		c.sess = newSession(c.now())
		c.lastError = ""
		c.state = StateTemplate
		log.Info("session started", "session", c.sess.ID)
	}
}

func (c *Controller) handleTemplate(ev Event) {
	switch ev.Type {
	case EventNext:
		c.tplIdx = c.catalog.Cycle(c.tplIdx, +1)
	case EventPrev:
		c.tplIdx = c.catalog.Cycle(c.tplIdx, -1)
	case EventShutter, EventEnter:
		c.sess.Template = c.catalog.At(c.tplIdx)
		log.Info("template fixed", "session", c.sess.ID, "template", c.sess.Template.ID)
		c.beginCountdown()
	}
}

func (c *Controller) beginCountdown() {
	c.state = StateCountdown
	c.epoch++
	c.countdown = c.cfg.CountdownSeconds
	if c.countdown <= 0 {
		c.startCapture()
		return
	}
	c.schedule(time.Second, Event{Type: EventTick, Epoch: c.epoch, Remaining: c.countdown - 1})
}

func (c *Controller) handleCountdown(ev Event) {
	switch ev.Type {
	case EventShutter:
		// Skip the rest of the countdown.
		c.startCapture()
	case EventTick:
		c.countdown = ev.Remaining
		if c.countdown <= 0 {
			c.startCapture()
			return
		}
		c.schedule(time.Second, Event{Type: EventTick, Epoch: c.epoch, Remaining: c.countdown - 1})
	}
}

// startCapture moves to Capturing and issues one background capture. The
// epoch bump invalidates any countdown timer still pending.
func (c *Controller) startCapture() {
	c.state = StateCapturing
	c.epoch++
	c.countdown = 0

	sid := c.sess.ID
	ctx := c.sess.ctx
	seq := len(c.sess.Captured) + 1
	c.runTask(func() Event {
		photo, err := c.capturer.Capture(ctx, seq)
		if err != nil {
			return Event{Type: EventCaptureFailed, Session: sid, Err: err}
		}
		return Event{Type: EventCaptureDone, Session: sid, Photo: photo}
	})
}

func (c *Controller) handleCapturing(ev Event) {
	switch ev.Type {
	case EventCaptureDone:
		c.sess.attempts = 0
		c.sess.Captured = append(c.sess.Captured, ev.Photo)
		log.Info("shot captured", "session", c.sess.ID,
			"shot", len(c.sess.Captured), "of", c.sess.Template.CaptureCount())
		c.state = StateQuickReview
		c.epoch++
		c.schedule(c.cfg.QuickReview, Event{Type: EventTick, Epoch: c.epoch})
	case EventCaptureFailed:
		c.sess.attempts++
		log.Warn("capture failed", "session", c.sess.ID,
			"attempt", c.sess.attempts, "err", ev.Err)
		if c.sess.attempts >= c.cfg.CaptureRetries {
			// No partial composite ever comes out of an incomplete
			// capture set; abandon the session.
			c.lastError = "camera failure"
			log.Error("capture retries exhausted, abandoning session", "session", c.sess.ID)
			c.toAttract()
			return
		}
		c.startCapture()
	}
}

func (c *Controller) handleQuickReview(ev Event) {
	if ev.Type != EventTick {
		return
	}
	if len(c.sess.Captured) < c.sess.Template.CaptureCount() {
		c.beginCountdown()
		return
	}
	c.state = StateSelection
	c.sess.Cursor = 0
	c.sess.Selected = nil
}

func (c *Controller) handleSelection(ev Event) {
	switch ev.Type {
	case EventNext:
		c.sess.MoveCursor(+1)
	case EventPrev:
		c.sess.MoveCursor(-1)
	case EventShutter:
		c.sess.Toggle()
	case EventEnter:
		if !c.sess.SelectionComplete() {
			return
		}
		c.state = StateReview
		c.startCompose()
	}
}

// startCompose builds the sheet in the background. The epoch bump makes any
// earlier in-flight composition stale, and the current composite is dropped
// so a print request cannot ship a sheet with the previous filter.
func (c *Controller) startCompose() {
	c.epoch++
	c.sess.Composite = nil
	sid := c.sess.ID
	epoch := c.epoch
	tpl := c.sess.Template
	paths := c.sess.SelectedPaths()
	filter := c.sess.Filter
	c.runTask(func() Event {
		comp, err := c.composer(tpl, paths, filter)
		if err != nil {
			return Event{Type: EventComposeFailed, Session: sid, Epoch: epoch, Err: err}
		}
		return Event{Type: EventComposeDone, Session: sid, Epoch: epoch, Composite: comp}
	})
}

func (c *Controller) handleReview(ev Event) {
	switch ev.Type {
	case EventComposeDone:
		c.sess.Composite = ev.Composite
	case EventComposeFailed:
		// Broken invariant, not a user condition: log as a defect and
		// abort the session.
		if errors.Is(ev.Err, compose.ErrSlotMismatch) {
			log.Error("composition invariant violated", "session", c.sess.ID, "err", ev.Err)
		} else {
			log.Error("composition failed", "session", c.sess.ID, "err", ev.Err)
		}
		c.lastError = "composition failure"
		c.toAttract()
	case EventNext:
		c.sess.Filter = c.sess.Filter.Cycle(+1)
		c.startCompose()
	case EventPrev:
		c.sess.Filter = c.sess.Filter.Cycle(-1)
		c.startCompose()
	case EventShutter, EventEnter:
		if c.sess.Composite == nil {
			return
		}
		c.startPrint()
	}
}

func (c *Controller) startPrint() {
	c.state = StatePrinting

	pcfg, err := c.pcfg.Load()
	if err != nil {
		log.Warn("printer config load failed", "err", err)
	}
	sid := c.sess.ID
	ctx := c.sess.ctx
	comp := c.sess.Composite
	c.runTask(func() Event {
		if err := c.spooler.Submit(ctx, comp, pcfg); err != nil {
			return Event{Type: EventPrintFailed, Session: sid, Err: err}
		}
		return Event{Type: EventPrintDone, Session: sid}
	})
}

func (c *Controller) handlePrinting(ev Event) {
	switch ev.Type {
	case EventPrintDone:
		log.Info("print completed", "session", c.sess.ID)
		c.lastError = ""
		c.toAttract()
	case EventPrintFailed:
		// Back to Review with composite and filter intact; reprint is
		// the user's call.
		log.Warn("print failed", "session", c.sess.ID, "err", ev.Err)
		c.lastError = printFailureText(ev.Err)
		c.state = StateReview
	}
}

// toAttract discards the session and resets to the attract screen.
func (c *Controller) toAttract() {
	if c.sess != nil {
		c.sess.discard()
		c.sess = nil
	}
	c.epoch++
	c.countdown = 0
	c.state = StateAttract
}

func printFailureText(err error) string {
	switch {
	case errors.Is(err, printer.ErrNotConfigured):
		return "printer not configured"
	case errors.Is(err, printer.ErrSpoolerTimeout):
		return "printer timed out"
	default:
		return "print failed"
	}
}

// publish refreshes the snapshot and notifies the listener.
func (c *Controller) publish() {
	snap := Snapshot{
		State:  c.state.String(),
		Filter: compose.FilterNone.String(),
	}
	tpl := c.catalog.At(c.tplIdx)
	snap.TemplateID, snap.TemplateName, snap.Slots = tpl.ID, tpl.Name, tpl.Slots
	snap.LastError = c.lastError

	if c.sess != nil {
		snap.SessionID = c.sess.ID
		snap.Countdown = c.countdown
		snap.Captured = len(c.sess.Captured)
		snap.Cursor = c.sess.Cursor
		snap.Selected = append([]int(nil), c.sess.Selected...)
		snap.Filter = c.sess.Filter.String()
		snap.Photos = c.sess.CapturedPaths()
		if c.sess.Template != nil {
			snap.TemplateID = c.sess.Template.ID
			snap.TemplateName = c.sess.Template.Name
			snap.Slots = c.sess.Template.Slots
			snap.CaptureGoal = c.sess.Template.CaptureCount()
		}
		if c.sess.Composite != nil {
			snap.Composite = c.sess.Composite.Path
		}
	}

	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(snap)
	}
}
