package template

import "fmt"

// Grid layout generators, used by cmd/rects to produce slot rectangles for
// the stock 1/2/4-slot sheets. Defaults were measured from the printed
// template artwork.

// GridOptions tunes the generated layouts. Zero values take the measured
// defaults for the slot count.
type GridOptions struct {
	LeftPct   float64
	TopPct    float64
	WidthPct  float64
	HeightPct float64
	HGapPct   float64
	VGapPct   float64
}

// SingleSlotRects returns the one-slot layout.
func SingleSlotRects(o GridOptions) []Rect {
	o = withDefaults(o, GridOptions{LeftPct: 1.6, TopPct: 25.35, WidthPct: 97.0, HeightPct: 38.5})
	return []Rect{{LeftPct: o.LeftPct, TopPct: o.TopPct, WidthPct: o.WidthPct, HeightPct: o.HeightPct}}
}

// TwoSlotRects returns two slots stacked vertically.
func TwoSlotRects(o GridOptions) []Rect {
	o = withDefaults(o, GridOptions{LeftPct: 6.0, TopPct: 10.0, WidthPct: 88.0, HeightPct: 40.0, VGapPct: 2.0})
	secondTop := o.TopPct + o.HeightPct + o.VGapPct
	return []Rect{
		{LeftPct: o.LeftPct, TopPct: o.TopPct, WidthPct: o.WidthPct, HeightPct: o.HeightPct},
		{LeftPct: o.LeftPct, TopPct: secondTop, WidthPct: o.WidthPct, HeightPct: o.HeightPct},
	}
}

// FourSlotRects returns a 2x2 grid.
func FourSlotRects(o GridOptions) []Rect {
	o = withDefaults(o, GridOptions{LeftPct: 6.0, TopPct: 12.0, WidthPct: 41.0, HeightPct: 32.0, HGapPct: 6.0, VGapPct: 10.0})
	secondLeft := o.LeftPct + o.WidthPct + o.HGapPct
	secondTop := o.TopPct + o.HeightPct + o.VGapPct
	return []Rect{
		{LeftPct: o.LeftPct, TopPct: o.TopPct, WidthPct: o.WidthPct, HeightPct: o.HeightPct},
		{LeftPct: secondLeft, TopPct: o.TopPct, WidthPct: o.WidthPct, HeightPct: o.HeightPct},
		{LeftPct: o.LeftPct, TopPct: secondTop, WidthPct: o.WidthPct, HeightPct: o.HeightPct},
		{LeftPct: secondLeft, TopPct: secondTop, WidthPct: o.WidthPct, HeightPct: o.HeightPct},
	}
}

// FullBleedRects returns one slot covering the whole sheet.
func FullBleedRects() []Rect {
	return []Rect{{LeftPct: 0, TopPct: 0, WidthPct: 100, HeightPct: 100}}
}

// RectsForSlots generates a layout for the given slot count.
func RectsForSlots(slots int, o GridOptions) ([]Rect, error) {
	switch slots {
	case 1:
		return SingleSlotRects(o), nil
	case 2:
		return TwoSlotRects(o), nil
	case 4:
		return FourSlotRects(o), nil
	default:
		return nil, fmt.Errorf("template: no grid layout for %d slots (supported: 1, 2, 4)", slots)
	}
}

func withDefaults(o, d GridOptions) GridOptions {
	if o.WidthPct == 0 {
		o.LeftPct, o.TopPct = d.LeftPct, d.TopPct
		o.WidthPct, o.HeightPct = d.WidthPct, d.HeightPct
	}
	if o.HGapPct == 0 {
		o.HGapPct = d.HGapPct
	}
	if o.VGapPct == 0 {
		o.VGapPct = d.VGapPct
	}
	return o
}
