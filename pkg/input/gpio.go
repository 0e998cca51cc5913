package input

import (
	"context"
	"time"

	"github.com/kioskworks/go-booth/internal/log"
)

// The booth's button wiring on the Pi header. Buttons pull the pin high
// while pressed.
const (
	PinNext    = 17
	PinEnter   = 27
	PinPrev    = 22
	PinShutter = 23
)

// PinReader abstracts the GPIO character device so the poller is testable
// off-device.
type PinReader interface {
	Read(pin int) (bool, error)
	Close() error
}

// Poller watches the four button pins and injects actions into a Source.
// Next, Prev and Shutter fire on the press edge; Enter goes through a
// HoldTracker so a long hold becomes Cancel instead.
type Poller struct {
	pins     PinReader
	source   *Source
	hold     *HoldTracker
	interval time.Duration
	now      func() time.Time

	last map[int]bool
}

// NewPoller returns a poller over pins with the given long-press threshold.
func NewPoller(pins PinReader, source *Source, longPress time.Duration) *Poller {
	return &Poller{
		pins:     pins,
		source:   source,
		hold:     NewHoldTracker(longPress),
		interval: 20 * time.Millisecond,
		now:      time.Now,
		last:     make(map[int]bool),
	}
}

// Run polls until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Info("gpio poller started",
		"next", PinNext, "enter", PinEnter, "prev", PinPrev, "shutter", PinShutter)

	for {
		select {
		case <-ctx.Done():
			if err := p.pins.Close(); err != nil {
				log.Warn("gpio close failed", "err", err)
			}
			return
		case <-ticker.C:
			p.Poll()
		}
	}
}

// Poll samples every pin once and injects the actions implied by the edges
// since the previous sample. An Enter press held past the threshold fires
// its cancel here, without waiting for the release edge.
func (p *Poller) Poll() {
	for _, pin := range []int{PinNext, PinPrev, PinShutter, PinEnter} {
		high, err := p.pins.Read(pin)
		if err != nil {
			log.Warn("gpio read failed", "pin", pin, "err", err)
			continue
		}
		was := p.last[pin]
		p.last[pin] = high
		if high == was {
			continue
		}
		p.edge(pin, high)
	}
	if a, ok := p.hold.Check(p.now()); ok {
		p.source.Inject(a)
	}
}

func (p *Poller) edge(pin int, pressed bool) {
	if pin == PinEnter {
		if pressed {
			p.hold.Press(p.now())
			return
		}
		if a, ok := p.hold.Release(p.now()); ok {
			p.source.Inject(a)
		}
		return
	}
	if !pressed {
		return
	}
	switch pin {
	case PinNext:
		p.source.Inject(ActionNext)
	case PinPrev:
		p.source.Inject(ActionPrev)
	case PinShutter:
		p.source.Inject(ActionShutter)
	}
}
