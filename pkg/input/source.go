package input

import "github.com/kioskworks/go-booth/internal/log"

// Source fans operator actions from any producer (GPIO poller, web API,
// keyboard shim) into a single channel the controller drains.
type Source struct {
	actions chan Action
}

// NewSource returns a source with a small buffer; button mashing beyond the
// buffer is dropped rather than blocking a producer.
func NewSource() *Source {
	return &Source{actions: make(chan Action, 16)}
}

// Inject queues an action. Safe from any goroutine.
func (s *Source) Inject(a Action) {
	select {
	case s.actions <- a:
	default:
		log.Warn("input queue full, dropping action", "action", a.String())
	}
}

// Actions returns the consumer side of the stream.
func (s *Source) Actions() <-chan Action {
	return s.actions
}
