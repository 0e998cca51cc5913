package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kioskworks/go-booth/pkg/capture"
	"github.com/kioskworks/go-booth/pkg/compose"
	"github.com/kioskworks/go-booth/pkg/printer"
	"github.com/kioskworks/go-booth/pkg/template"
)

// fakeCapturer hands out synthetic photos, failing where scripted.
type fakeCapturer struct {
	calls int
	fails []error
}

func (f *fakeCapturer) Capture(ctx context.Context, seq int) (capture.Photo, error) {
	f.calls++
	if len(f.fails) > 0 {
		err := f.fails[0]
		f.fails = f.fails[1:]
		if err != nil {
			return capture.Photo{}, err
		}
	}
	return capture.Photo{Path: fmt.Sprintf("/photos/shot_%d.jpg", f.calls)}, nil
}

type fakePrinter struct {
	submits int
	err     error
}

func (f *fakePrinter) Submit(ctx context.Context, comp *compose.Composite, cfg printer.Config) error {
	f.submits++
	return f.err
}

type fakePcfg struct{ cfg printer.Config }

func (f *fakePcfg) Load() (printer.Config, error) { return f.cfg, nil }

// scheduler records timers instead of arming them; tests fire them by hand.
type scheduler struct {
	pending []Event
	delays  []time.Duration
}

func (s *scheduler) schedule(d time.Duration, ev Event) {
	s.pending = append(s.pending, ev)
	s.delays = append(s.delays, d)
}

// fire pops and handles the oldest pending timer.
func (s *scheduler) fire(t *testing.T, c *Controller) {
	t.Helper()
	if len(s.pending) == 0 {
		t.Fatal("no pending timer to fire")
	}
	ev := s.pending[0]
	s.pending = s.pending[1:]
	s.delays = s.delays[1:]
	c.handle(ev)
}

func twoSlotCatalog(t *testing.T) *template.Catalog {
	t.Helper()
	cat, err := template.NewCatalog([]*template.Template{
		{
			ID: "single", Name: "Single", Slots: 1,
			Rects: []template.Rect{{LeftPct: 10, TopPct: 15, WidthPct: 80, HeightPct: 70}},
		},
		{
			ID: "duo", Name: "Duo", Slots: 2,
			Rects: []template.Rect{
				{LeftPct: 6, TopPct: 10, WidthPct: 88, HeightPct: 40},
				{LeftPct: 6, TopPct: 52, WidthPct: 88, HeightPct: 40},
			},
		},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func newTestController(t *testing.T) (*Controller, *fakeCapturer, *fakePrinter, *scheduler) {
	t.Helper()
	cam := &fakeCapturer{}
	pr := &fakePrinter{}
	c := New(Config{
		CountdownSeconds: 3,
		QuickReview:      1200 * time.Millisecond,
		Inactivity:       90 * time.Second,
		CaptureRetries:   3,
	}, twoSlotCatalog(t), cam, pr, &fakePcfg{cfg: printer.Config{QueueName: "Canon"}})

	sched := &scheduler{}
	c.schedule = sched.schedule
	c.runTask = func(fn func() Event) { c.handle(fn()) }
	c.composer = func(tpl *template.Template, paths []string, f compose.Filter) (*compose.Composite, error) {
		return &compose.Composite{Path: fmt.Sprintf("/sheets/%s_%s.jpg", tpl.ID, f)}, nil
	}
	return c, cam, pr, sched
}

// drainTimers fires every pending timer until the queue is empty, letting
// countdown and quick-review chains run to their natural end.
func drainTimers(t *testing.T, c *Controller, s *scheduler) {
	t.Helper()
	for i := 0; len(s.pending) > 0; i++ {
		if i > 100 {
			t.Fatal("timer chain did not terminate")
		}
		s.fire(t, c)
	}
}

func TestFullSessionSingleSlot(t *testing.T) {
	c, cam, pr, sched := newTestController(t)

	c.handle(Event{Type: EventStart})
	if c.state != StateTemplate {
		t.Fatalf("after start: state = %v", c.state)
	}

	c.handle(Event{Type: EventEnter})
	if c.state != StateCountdown {
		t.Fatalf("after template enter: state = %v", c.state)
	}

	// 3..2..1..capture, quick review, next countdown; a single-slot
	// template needs 1+2 = 3 shots.
	drainTimers(t, c, sched)
	if c.state != StateSelection {
		t.Fatalf("after captures: state = %v", c.state)
	}
	if got := len(c.sess.Captured); got != 3 {
		t.Fatalf("captured %d shots, want 3", got)
	}
	if cam.calls != 3 {
		t.Errorf("camera called %d times, want 3", cam.calls)
	}

	c.handle(Event{Type: EventShutter}) // select photo 0
	c.handle(Event{Type: EventEnter})
	if c.state != StateReview {
		t.Fatalf("after selection enter: state = %v", c.state)
	}
	if c.sess.Composite == nil {
		t.Fatal("no composite after entering review")
	}

	c.handle(Event{Type: EventEnter})
	if pr.submits != 1 {
		t.Fatalf("printer submits = %d, want 1", pr.submits)
	}
	if c.state != StateAttract {
		t.Fatalf("after print: state = %v", c.state)
	}
	if c.sess != nil {
		t.Error("session not discarded after print")
	}
}

func TestCountdownShutterSkips(t *testing.T) {
	c, cam, _, sched := newTestController(t)
	c.handle(Event{Type: EventStart})
	c.handle(Event{Type: EventEnter})

	stale := sched.pending[0]
	c.handle(Event{Type: EventShutter}) // skip straight to capture
	if cam.calls != 1 {
		t.Fatalf("camera calls = %d, want 1 after skip", cam.calls)
	}

	// The abandoned countdown timer fires late; its epoch is stale.
	captured := len(c.sess.Captured)
	c.handle(stale)
	if len(c.sess.Captured) != captured {
		t.Error("stale countdown tick caused a second capture")
	}
}

func TestCaptureRetriesThenSuccess(t *testing.T) {
	c, cam, _, sched := newTestController(t)
	cam.fails = []error{capture.ErrCaptureTimeout, capture.ErrCaptureTimeout}

	c.handle(Event{Type: EventStart})
	c.handle(Event{Type: EventEnter})
	drainTimers(t, c, sched)

	// Two failures burn attempts 1 and 2; the third try of shot one
	// succeeds and the session carries on to selection.
	if c.state != StateSelection {
		t.Fatalf("state = %v, want selection", c.state)
	}
	if got := len(c.sess.Captured); got != 3 {
		t.Errorf("captured %d, want 3", got)
	}
	if cam.calls != 5 {
		t.Errorf("camera calls = %d, want 5", cam.calls)
	}
}

func TestCaptureRetriesExhaustedAborts(t *testing.T) {
	c, cam, _, sched := newTestController(t)
	cam.fails = []error{
		capture.ErrCaptureTimeout,
		capture.ErrCaptureTimeout,
		capture.ErrCaptureTimeout,
	}

	c.handle(Event{Type: EventStart})
	c.handle(Event{Type: EventEnter})
	drainTimers(t, c, sched)

	if c.state != StateAttract {
		t.Fatalf("state = %v, want attract after exhausted retries", c.state)
	}
	if c.sess != nil {
		t.Error("session survived a camera failure")
	}
	if snap := c.Snapshot(); snap.LastError == "" {
		t.Error("snapshot carries no error after abort")
	}
}

func TestPrintFailureReturnsToReview(t *testing.T) {
	c, _, pr, sched := newTestController(t)
	pr.err = printer.ErrNotConfigured

	c.handle(Event{Type: EventStart})
	c.handle(Event{Type: EventEnter})
	drainTimers(t, c, sched)
	c.handle(Event{Type: EventShutter})
	c.handle(Event{Type: EventEnter})

	c.handle(Event{Type: EventNext}) // sepia via filter cycle
	filterBefore := c.sess.Filter
	compBefore := c.sess.Composite

	c.handle(Event{Type: EventEnter}) // print, fails
	if c.state != StateReview {
		t.Fatalf("state = %v, want review after print failure", c.state)
	}
	if c.sess.Filter != filterBefore {
		t.Error("filter lost across print failure")
	}
	if c.sess.Composite != compBefore {
		t.Error("composite lost across print failure")
	}

	// Retry succeeds once the queue exists.
	pr.err = nil
	c.handle(Event{Type: EventEnter})
	if c.state != StateAttract {
		t.Errorf("state = %v, want attract after successful reprint", c.state)
	}
}

func TestFilterCycleRecomposes(t *testing.T) {
	c, _, _, sched := newTestController(t)
	c.handle(Event{Type: EventStart})
	c.handle(Event{Type: EventEnter})
	drainTimers(t, c, sched)
	c.handle(Event{Type: EventShutter})
	c.handle(Event{Type: EventEnter})

	first := c.sess.Composite.Path
	c.handle(Event{Type: EventNext})
	if c.sess.Filter != compose.FilterBlackWhite {
		t.Errorf("filter = %v, want black_white", c.sess.Filter)
	}
	if c.sess.Composite.Path == first {
		t.Error("composite not rebuilt after filter change")
	}

	c.handle(Event{Type: EventPrev})
	if c.sess.Filter != compose.FilterNone {
		t.Errorf("filter = %v, want none after cycling back", c.sess.Filter)
	}
}

func TestCancelFromEveryState(t *testing.T) {
	reach := map[string]func(c *Controller, sched *scheduler, t *testing.T){
		"template": func(c *Controller, sched *scheduler, t *testing.T) {
			c.handle(Event{Type: EventStart})
		},
		"countdown": func(c *Controller, sched *scheduler, t *testing.T) {
			c.handle(Event{Type: EventStart})
			c.handle(Event{Type: EventEnter})
		},
		"selection": func(c *Controller, sched *scheduler, t *testing.T) {
			c.handle(Event{Type: EventStart})
			c.handle(Event{Type: EventEnter})
			drainTimers(t, c, sched)
		},
		"review": func(c *Controller, sched *scheduler, t *testing.T) {
			c.handle(Event{Type: EventStart})
			c.handle(Event{Type: EventEnter})
			drainTimers(t, c, sched)
			c.handle(Event{Type: EventShutter})
			c.handle(Event{Type: EventEnter})
		},
	}

	for name, setup := range reach {
		for _, evType := range []EventType{EventCancel, EventInactivity} {
			t.Run(name+"/"+evType.String(), func(t *testing.T) {
				c, _, _, sched := newTestController(t)
				setup(c, sched, t)
				if c.state == StateAttract {
					t.Fatal("setup did not leave attract")
				}
				c.handle(Event{Type: evType})
				if c.state != StateAttract {
					t.Errorf("state = %v, want attract", c.state)
				}
				if c.sess != nil {
					t.Error("session not discarded")
				}
			})
		}
	}
}

func TestCancelInAttractIsNoop(t *testing.T) {
	c, _, _, _ := newTestController(t)
	c.handle(Event{Type: EventCancel})
	if c.state != StateAttract {
		t.Errorf("state = %v", c.state)
	}
}

func TestTemplateCycling(t *testing.T) {
	c, _, _, _ := newTestController(t)
	c.handle(Event{Type: EventStart})

	c.handle(Event{Type: EventNext})
	if got := c.Snapshot().TemplateID; got != "duo" {
		t.Errorf("after next: template = %q, want duo", got)
	}
	c.handle(Event{Type: EventNext})
	if got := c.Snapshot().TemplateID; got != "single" {
		t.Errorf("after wrap: template = %q, want single", got)
	}
	c.handle(Event{Type: EventPrev})
	if got := c.Snapshot().TemplateID; got != "duo" {
		t.Errorf("after prev wrap: template = %q, want duo", got)
	}
}

func TestSelectionEnterIncompleteIsRefused(t *testing.T) {
	c, _, _, sched := newTestController(t)
	c.handle(Event{Type: EventStart})
	c.handle(Event{Type: EventNext}) // duo: 2 slots, 4 shots
	c.handle(Event{Type: EventEnter})
	drainTimers(t, c, sched)

	if c.state != StateSelection {
		t.Fatalf("state = %v", c.state)
	}
	c.handle(Event{Type: EventShutter}) // only 1 of 2 selected
	c.handle(Event{Type: EventEnter})
	if c.state != StateSelection {
		t.Errorf("state = %v, want selection to hold until complete", c.state)
	}

	c.handle(Event{Type: EventNext})
	c.handle(Event{Type: EventShutter})
	c.handle(Event{Type: EventEnter})
	if c.state != StateReview {
		t.Errorf("state = %v, want review once selection complete", c.state)
	}
}

func TestSelectionCapAndDeselect(t *testing.T) {
	c, _, _, sched := newTestController(t)
	c.handle(Event{Type: EventStart})
	c.handle(Event{Type: EventEnter}) // single: 1 slot, 3 shots
	drainTimers(t, c, sched)

	c.handle(Event{Type: EventShutter}) // select 0
	c.handle(Event{Type: EventNext})
	c.handle(Event{Type: EventShutter}) // refused, cap reached
	if got := len(c.sess.Selected); got != 1 {
		t.Fatalf("selected %d, want cap of 1", got)
	}

	c.handle(Event{Type: EventPrev})
	c.handle(Event{Type: EventShutter}) // deselect 0 despite cap
	if len(c.sess.Selected) != 0 {
		t.Error("deselection blocked at capacity")
	}
}

func TestStaleSessionCompletionDiscarded(t *testing.T) {
	c, _, _, sched := newTestController(t)
	c.handle(Event{Type: EventStart})
	c.handle(Event{Type: EventEnter})
	drainTimers(t, c, sched)
	oldID := c.sess.ID

	c.handle(Event{Type: EventCancel})
	c.handle(Event{Type: EventCaptureDone, Session: oldID, Photo: capture.Photo{Path: "/late.jpg"}})
	if c.state != StateAttract {
		t.Errorf("stale completion moved state to %v", c.state)
	}

	// A fresh session must not absorb the dead one's photos either.
	c.handle(Event{Type: EventStart})
	c.handle(Event{Type: EventCaptureDone, Session: oldID, Photo: capture.Photo{Path: "/late.jpg"}})
	if len(c.sess.Captured) != 0 {
		t.Error("dead session's photo landed in a new session")
	}
}

func TestStaleComposeDiscarded(t *testing.T) {
	c, _, _, sched := newTestController(t)

	// Make composition manual so two can be in flight.
	var tasks []func() Event
	c.runTask = func(fn func() Event) { tasks = append(tasks, fn) }

	c.handle(Event{Type: EventStart})
	c.handle(Event{Type: EventEnter})
	for len(sched.pending) > 0 || len(tasks) > 0 {
		for len(tasks) > 0 {
			fn := tasks[0]
			tasks = tasks[1:]
			c.handle(fn())
		}
		if len(sched.pending) > 0 {
			sched.fire(t, c)
		}
	}
	c.handle(Event{Type: EventShutter})
	c.handle(Event{Type: EventEnter})

	first := tasks[0] // composition for filter none
	tasks = nil
	c.handle(Event{Type: EventNext}) // supersedes it with black_white
	second := tasks[0]

	c.handle(second())
	want := c.sess.Composite.Path
	c.handle(first()) // stale epoch, must not overwrite
	if c.sess.Composite.Path != want {
		t.Errorf("stale composition overwrote the current one")
	}
}

func TestComposeFailureAborts(t *testing.T) {
	c, _, _, sched := newTestController(t)
	c.composer = func(tpl *template.Template, paths []string, f compose.Filter) (*compose.Composite, error) {
		return nil, errors.New("decode failed")
	}

	c.handle(Event{Type: EventStart})
	c.handle(Event{Type: EventEnter})
	drainTimers(t, c, sched)
	c.handle(Event{Type: EventShutter})
	c.handle(Event{Type: EventEnter})

	if c.state != StateAttract {
		t.Errorf("state = %v, want attract after composition failure", c.state)
	}
}

func TestPrintRefusedWithoutComposite(t *testing.T) {
	c, _, pr, sched := newTestController(t)

	var tasks []func() Event
	realRun := c.runTask
	c.runTask = func(fn func() Event) { tasks = append(tasks, fn) }

	c.handle(Event{Type: EventStart})
	c.runTask = realRun
	c.handle(Event{Type: EventEnter})
	drainTimers(t, c, sched)
	c.handle(Event{Type: EventShutter})

	c.runTask = func(fn func() Event) { tasks = append(tasks, fn) }
	c.handle(Event{Type: EventEnter}) // review, composition still in flight

	c.handle(Event{Type: EventEnter}) // print attempt before composite ready
	if pr.submits != 0 {
		t.Error("print submitted with no composite")
	}
	if c.state != StateReview {
		t.Errorf("state = %v, want review", c.state)
	}
}

func TestPrintWaitsForRecompose(t *testing.T) {
	c, _, pr, sched := newTestController(t)
	c.handle(Event{Type: EventStart})
	c.handle(Event{Type: EventEnter})
	drainTimers(t, c, sched)
	c.handle(Event{Type: EventShutter})
	c.handle(Event{Type: EventEnter})
	if c.sess.Composite == nil {
		t.Fatal("no composite after entering review")
	}

	// Change the filter but hold the recompose in flight.
	var tasks []func() Event
	c.runTask = func(fn func() Event) { tasks = append(tasks, fn) }
	c.handle(Event{Type: EventNext})

	// A print request now must not ship the old filter's sheet.
	c.handle(Event{Type: EventEnter})
	if pr.submits != 0 {
		t.Fatal("printed the superseded composite during recompose")
	}
	if c.state != StateReview {
		t.Fatalf("state = %v, want review", c.state)
	}

	c.handle(tasks[0]())
	want := c.sess.Composite.Path
	c.runTask = func(fn func() Event) { c.handle(fn()) }
	c.handle(Event{Type: EventEnter})
	if pr.submits != 1 {
		t.Fatal("print refused after the recompose landed")
	}
	if c.sess != nil {
		t.Error("session not discarded after print")
	}
	if want == "" {
		t.Error("recomposed sheet has no path")
	}
}

func TestSnapshotTracksProgress(t *testing.T) {
	c, _, _, sched := newTestController(t)
	c.handle(Event{Type: EventStart})
	c.handle(Event{Type: EventEnter})
	drainTimers(t, c, sched)

	snap := c.Snapshot()
	if snap.State != "selection" {
		t.Errorf("snapshot state = %q", snap.State)
	}
	if snap.Captured != 3 || snap.CaptureGoal != 3 {
		t.Errorf("snapshot progress = %d/%d, want 3/3", snap.Captured, snap.CaptureGoal)
	}
	if len(snap.Photos) != 3 {
		t.Errorf("snapshot photos = %d, want 3", len(snap.Photos))
	}
	if snap.SessionID == "" {
		t.Error("snapshot missing session id")
	}
}
