// Package template defines print layout templates and the catalog that
// serves them. Templates are immutable after load; every slot rectangle is
// expressed as percentages of the fixed A4 canvas.
package template

import (
	"errors"
	"fmt"
)

// A4 canvas dimensions at 300 DPI. Every rect is resolved against these.
const (
	A4Width  = 2480
	A4Height = 3508
)

// Validation errors raised at catalog load time. Malformed templates are
// rejected up front, never per session.
var (
	ErrNoID         = errors.New("template: missing id")
	ErrBadSlotCount = errors.New("template: slots must be positive")
	ErrRectMismatch = errors.New("template: rect count does not match slots")
	ErrRectRange    = errors.New("template: rect percentages out of [0,100]")
)

// Rect is one photo slot, percentage-based within the A4 canvas.
type Rect struct {
	LeftPct   float64 `json:"leftPct"`
	TopPct    float64 `json:"topPct"`
	WidthPct  float64 `json:"widthPct"`
	HeightPct float64 `json:"heightPct"`
}

// valid reports whether the rect lies within the canvas.
func (r Rect) valid() bool {
	inRange := func(v float64) bool { return v >= 0 && v <= 100 }
	return inRange(r.LeftPct) && inRange(r.TopPct) &&
		inRange(r.WidthPct) && inRange(r.HeightPct) &&
		r.LeftPct+r.WidthPct <= 100.0+1e-9 &&
		r.TopPct+r.HeightPct <= 100.0+1e-9
}

// Pixels resolves the rect against the A4 canvas.
func (r Rect) Pixels() (x, y, w, h int) {
	x = int(r.LeftPct / 100 * A4Width)
	y = int(r.TopPct / 100 * A4Height)
	w = int(r.WidthPct / 100 * A4Width)
	h = int(r.HeightPct / 100 * A4Height)
	return x, y, w, h
}

// Template is one print layout. Slots is the number of photos in the final
// composite; Rects holds exactly Slots slot rectangles in layout order.
// Background optionally names a sheet image composited under the photos.
type Template struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slots      int    `json:"slots"`
	Background string `json:"background,omitempty"`
	Rects      []Rect `json:"rects"`
}

// Validate checks the template invariants.
func (t *Template) Validate() error {
	if t.ID == "" {
		return ErrNoID
	}
	if t.Slots <= 0 {
		return fmt.Errorf("%w: %q has slots=%d", ErrBadSlotCount, t.ID, t.Slots)
	}
	if len(t.Rects) != t.Slots {
		return fmt.Errorf("%w: %q has %d rects for %d slots", ErrRectMismatch, t.ID, len(t.Rects), t.Slots)
	}
	for i, r := range t.Rects {
		if !r.valid() {
			return fmt.Errorf("%w: %q rect %d", ErrRectRange, t.ID, i)
		}
	}
	return nil
}

// CaptureCount is how many shots a session takes for this template:
// two spares on top of the slot count so the user can discard misfires.
func (t *Template) CaptureCount() int {
	return t.Slots + 2
}
