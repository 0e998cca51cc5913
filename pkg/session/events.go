package session

import (
	"github.com/kioskworks/go-booth/pkg/capture"
	"github.com/kioskworks/go-booth/pkg/compose"
	"github.com/kioskworks/go-booth/pkg/input"
)

// EventType enumerates everything the controller reacts to: operator
// actions, synthesized timer ticks and async task completions.
type EventType int

const (
	EventStart EventType = iota
	EventNext
	EventPrev
	EventShutter
	EventEnter
	EventCancel // long-press cancel, synthesized by the input source
	EventTick
	EventInactivity
	EventCaptureDone
	EventCaptureFailed
	EventComposeDone
	EventComposeFailed
	EventPrintDone
	EventPrintFailed
)

var eventNames = map[EventType]string{
	EventStart:         "start",
	EventNext:          "next",
	EventPrev:          "prev",
	EventShutter:       "shutter",
	EventEnter:         "enter",
	EventCancel:        "cancel",
	EventTick:          "tick",
	EventInactivity:    "inactivity_timeout",
	EventCaptureDone:   "capture_completed",
	EventCaptureFailed: "capture_failed",
	EventComposeDone:   "composition_ready",
	EventComposeFailed: "composition_failed",
	EventPrintDone:     "print_completed",
	EventPrintFailed:   "print_failed",
}

func (t EventType) String() string {
	if n, ok := eventNames[t]; ok {
		return n
	}
	return "unknown"
}

// Event is one entry on the controller's queue. Timer ticks carry the epoch
// they were scheduled under so superseded timers are discarded; async
// completions carry the session ID that spawned them so completions from a
// dead session are discarded too.
type Event struct {
	Type      EventType
	Epoch     uint64
	Remaining int    // countdown seconds left, for EventTick
	Session   string // session ID, for async completions
	Photo     capture.Photo
	Composite *compose.Composite
	Err       error
}

// FromAction converts a normalized operator action into an event.
func FromAction(a input.Action) Event {
	switch a {
	case input.ActionNext:
		return Event{Type: EventNext}
	case input.ActionPrev:
		return Event{Type: EventPrev}
	case input.ActionShutter:
		return Event{Type: EventShutter}
	case input.ActionEnter:
		return Event{Type: EventEnter}
	case input.ActionCancel:
		return Event{Type: EventCancel}
	default:
		return Event{Type: EventStart}
	}
}
