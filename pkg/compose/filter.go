package compose

import "fmt"

// Filter is the pixel filter applied to the finished sheet.
type Filter int

const (
	FilterNone Filter = iota
	FilterBlackWhite
	FilterSepia

	filterCount
)

// Sepia ramp endpoints, matching the printed artwork the device shipped
// with: grayscale colorized between #2e1f0f and #f4e1c1.
var (
	sepiaBlack = [3]uint8{0x2e, 0x1f, 0x0f}
	sepiaWhite = [3]uint8{0xf4, 0xe1, 0xc1}
)

// String returns the wire name of the filter.
func (f Filter) String() string {
	switch f {
	case FilterBlackWhite:
		return "black_white"
	case FilterSepia:
		return "sepia"
	default:
		return "none"
	}
}

// Cycle returns the filter delta steps away with wrap-around.
func (f Filter) Cycle(delta int) Filter {
	n := int(filterCount)
	return Filter(((int(f)+delta)%n + n) % n)
}

// ParseFilter resolves a wire name.
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "none", "":
		return FilterNone, nil
	case "black_white":
		return FilterBlackWhite, nil
	case "sepia":
		return FilterSepia, nil
	}
	return FilterNone, fmt.Errorf("compose: unknown filter %q", s)
}
