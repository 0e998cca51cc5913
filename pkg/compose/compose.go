// Package compose builds the A4 print sheet from a template and the
// selected photos. Composition is pure: identical inputs yield byte-identical
// JPEG output, so the review screen can recompose on every filter change.
package compose

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"

	"golang.org/x/image/draw"

	_ "image/png" // template backgrounds may be PNG

	"github.com/kioskworks/go-booth/pkg/template"
)

// JPEG quality for the print sheet.
const sheetQuality = 95

// Sheet background when the template carries no artwork.
var canvasFill = color.RGBA{R: 34, G: 34, B: 34, A: 255}

// ErrSlotMismatch means the photo count does not match the template's slots.
// Given the controller's invariants this is unreachable; hitting it is a
// defect, not a user condition.
var ErrSlotMismatch = errors.New("compose: photo count does not match template slots")

// Composite is the finished sheet: decoded pixels plus the encoded JPEG.
// Path is set once the dispatcher writes it out for printing.
type Composite struct {
	Image *image.RGBA
	JPEG  []byte
	Path  string
}

// Sheet lays photos[i] into tpl.Rects[i] on a plain A4 canvas and applies
// the filter. Photos must be in selection order.
func Sheet(tpl *template.Template, photos []image.Image, f Filter) (*Composite, error) {
	return sheet(tpl, nil, photos, f)
}

// SheetOnBackground is Sheet with template artwork under the photos. The
// background is scaled to A4 if it is any other size.
func SheetOnBackground(tpl *template.Template, bg image.Image, photos []image.Image, f Filter) (*Composite, error) {
	return sheet(tpl, bg, photos, f)
}

// SheetFiles loads the photos (and the template background, when present and
// readable) from disk and composes them. An unreadable background falls back
// to the plain canvas; an unreadable photo is an error.
func SheetFiles(tpl *template.Template, paths []string, f Filter) (*Composite, error) {
	if len(paths) != tpl.Slots {
		return nil, fmt.Errorf("%w: %d photos for %d slots", ErrSlotMismatch, len(paths), tpl.Slots)
	}
	photos := make([]image.Image, len(paths))
	for i, p := range paths {
		img, err := loadImage(p)
		if err != nil {
			return nil, fmt.Errorf("compose: load photo %s: %w", p, err)
		}
		photos[i] = img
	}
	var bg image.Image
	if tpl.Background != "" {
		if img, err := loadImage(tpl.Background); err == nil {
			bg = img
		}
	}
	return sheet(tpl, bg, photos, f)
}

func sheet(tpl *template.Template, bg image.Image, photos []image.Image, f Filter) (*Composite, error) {
	if len(photos) != tpl.Slots {
		return nil, fmt.Errorf("%w: %d photos for %d slots", ErrSlotMismatch, len(photos), tpl.Slots)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, template.A4Width, template.A4Height))
	if bg != nil {
		draw.CatmullRom.Scale(canvas, canvas.Bounds(), bg, bg.Bounds(), draw.Src, nil)
	} else {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(canvasFill), image.Point{}, draw.Src)
	}

	for i, photo := range photos {
		x, y, w, h := tpl.Rects[i].Pixels()
		fillSlot(canvas, image.Rect(x, y, x+w, y+h), photo)
	}

	applyFilter(canvas, f)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: sheetQuality}); err != nil {
		return nil, fmt.Errorf("compose: encode: %w", err)
	}
	return &Composite{Image: canvas, JPEG: buf.Bytes()}, nil
}

// fillSlot places src into rect with a crop-to-fill policy: the centered
// source region matching the rect's aspect is scaled to cover it exactly.
// The source is mirrored horizontally first so the print matches what the
// user saw in the live preview.
func fillSlot(dst *image.RGBA, rect image.Rectangle, src image.Image) {
	m := mirrorH(src)
	sb := m.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 || rect.Dx() == 0 || rect.Dy() == 0 {
		return
	}

	scale := math.Max(
		float64(rect.Dx())/float64(sb.Dx()),
		float64(rect.Dy())/float64(sb.Dy()),
	)
	cropW := int(math.Round(float64(rect.Dx()) / scale))
	cropH := int(math.Round(float64(rect.Dy()) / scale))
	if cropW > sb.Dx() {
		cropW = sb.Dx()
	}
	if cropH > sb.Dy() {
		cropH = sb.Dy()
	}
	cx := sb.Min.X + (sb.Dx()-cropW)/2
	cy := sb.Min.Y + (sb.Dy()-cropH)/2
	srcRect := image.Rect(cx, cy, cx+cropW, cy+cropH)

	draw.CatmullRom.Scale(dst, rect, m, srcRect, draw.Src, nil)
}

// mirrorH returns a horizontally flipped RGBA copy of src.
func mirrorH(src image.Image) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(b.Dx()-1-x, y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

// applyFilter transforms the canvas pixels in place.
func applyFilter(img *image.RGBA, f Filter) {
	if f == FilterNone {
		return
	}
	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		r, g, b := pix[i], pix[i+1], pix[i+2]
		// Rec. 601 luminance, integer arithmetic for determinism.
		y := (299*int(r) + 587*int(g) + 114*int(b)) / 1000
		switch f {
		case FilterBlackWhite:
			pix[i], pix[i+1], pix[i+2] = uint8(y), uint8(y), uint8(y)
		case FilterSepia:
			pix[i] = ramp(sepiaBlack[0], sepiaWhite[0], y)
			pix[i+1] = ramp(sepiaBlack[1], sepiaWhite[1], y)
			pix[i+2] = ramp(sepiaBlack[2], sepiaWhite[2], y)
		}
	}
}

// ramp interpolates between lo and hi by luminance y in [0,255].
func ramp(lo, hi uint8, y int) uint8 {
	return uint8(int(lo) + (int(hi)-int(lo))*y/255)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
