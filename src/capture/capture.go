package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"math"

	"github.com/disintegration/imaging"
	"github.com/kbinani/screenshot"
)

var (
	// ErrDisplayUnavailable means the backing display image could not be
	// obtained (no display, or the screen-recording permission is missing).
	// Callers must not retry automatically; the permission prompt is the
	// OS shell's job.
	ErrDisplayUnavailable = errors.New("display unavailable")

	// ErrCropOutOfBounds means the computed pixel rect does not intersect
	// the captured display image. This indicates a selector/geometry bug,
	// not a transient condition.
	ErrCropOutOfBounds = errors.New("crop rect out of display bounds")
)

// Region is a screen region in screen points with the origin at the
// bottom-left of the primary display, per the desktop convention the
// selector emits. A zero-value Region is the "selection cancelled" sentinel.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Valid reports whether the region describes a non-empty area.
func (r Region) Valid() bool { return r.Width > 0 && r.Height > 0 }

// IsZero reports the cancellation sentinel.
func (r Region) IsZero() bool { return r == Region{} }

// Display describes one monitor in point space plus its backing scale.
type Display struct {
	OriginX      int // point-space origin of this display
	OriginY      int
	WidthPoints  int
	HeightPoints int
	Scale        float64 // physical pixels per point (2.0 on Retina)
}

// Image is an owned capture result: the cropped bitmap and its pixel size.
// After capture it is handed to the recognizer and presenter read-only.
type Image struct {
	Bitmap      *image.NRGBA
	PixelWidth  int
	PixelHeight int
}

// PixelRect converts a bottom-left-origin point region to the capture
// backend's top-left-origin pixel rect. The Y flip is mandatory: omitting
// it produces a vertically mirrored crop.
func PixelRect(r Region, d Display) image.Rectangle {
	s := d.Scale
	if s <= 0 {
		s = 1.0
	}
	x := float64(r.X-d.OriginX) * s
	y := float64(d.HeightPoints-d.OriginY-r.Y-r.Height) * s
	w := float64(r.Width) * s
	h := float64(r.Height) * s
	return image.Rect(
		int(math.Round(x)),
		int(math.Round(y)),
		int(math.Round(x+w)),
		int(math.Round(y+h)),
	)
}

// PointRegion is the inverse of PixelRect: it re-derives the screen-point
// region from a pixel rect. Used by tests and by the selector when echoing
// a capture back into point space.
func PointRegion(px image.Rectangle, d Display) Region {
	s := d.Scale
	if s <= 0 {
		s = 1.0
	}
	x := float64(px.Min.X)/s + float64(d.OriginX)
	w := float64(px.Dx()) / s
	h := float64(px.Dy()) / s
	y := float64(d.HeightPoints-d.OriginY) - float64(px.Min.Y)/s - h
	return Region{
		X:      int(math.Round(x)),
		Y:      int(math.Round(y)),
		Width:  int(math.Round(w)),
		Height: int(math.Round(h)),
	}
}

// PrimaryDisplay derives the point-space description of the primary
// monitor. kbinani reports virtual-screen bounds in physical pixels; the
// scale factor converts those to points.
func PrimaryDisplay(scale float64) (Display, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return Display{}, fmt.Errorf("%w: no active displays", ErrDisplayUnavailable)
	}
	if scale <= 0 {
		scale = 1.0
	}
	b := screenshot.GetDisplayBounds(0)
	return Display{
		OriginX:      int(math.Round(float64(b.Min.X) / scale)),
		OriginY:      int(math.Round(float64(b.Min.Y) / scale)),
		WidthPoints:  int(math.Round(float64(b.Dx()) / scale)),
		HeightPoints: int(math.Round(float64(b.Dy()) / scale)),
		Scale:        scale,
	}, nil
}

// Capturer captures point regions against a live display. The zero value
// is not usable; construct with New.
type Capturer struct {
	display     func() (Display, error)
	grabDisplay func(Display) (image.Image, error)
}

// New returns a Capturer bound to the primary display at the given scale.
func New(scale float64) *Capturer {
	return &Capturer{
		display: func() (Display, error) { return PrimaryDisplay(scale) },
		grabDisplay: func(d Display) (image.Image, error) {
			b := screenshot.GetDisplayBounds(0)
			img, err := screenshot.CaptureRect(b)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDisplayUnavailable, err)
			}
			return img, nil
		},
	}
}

// Capture grabs the full display image and crops it to the pixel rect of
// the requested point region.
func (c *Capturer) Capture(region Region) (*Image, error) {
	if !region.Valid() {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}

	disp, err := c.display()
	if err != nil {
		return nil, err
	}

	full, err := c.grabDisplay(disp)
	if err != nil {
		return nil, err
	}

	return CropDisplayImage(full, region, disp)
}

// CropDisplayImage crops an already-captured display image to a point
// region. Split out so the geometry is testable without a live display.
func CropDisplayImage(full image.Image, region Region, disp Display) (*Image, error) {
	px := PixelRect(region, disp)

	// The display image from the backend has a top-left pixel origin
	// anchored at the display's own bounds.
	clipped := px.Intersect(image.Rect(0, 0, full.Bounds().Dx(), full.Bounds().Dy()))
	if clipped.Empty() {
		return nil, fmt.Errorf("%w: pixel rect %v vs display %dx%d",
			ErrCropOutOfBounds, px, full.Bounds().Dx(), full.Bounds().Dy())
	}

	cropped := imaging.Crop(full, clipped.Add(full.Bounds().Min))
	log.Printf("capture: region %+v -> pixel rect %v (%dx%d px)",
		region, px, cropped.Rect.Dx(), cropped.Rect.Dy())

	return &Image{
		Bitmap:      cropped,
		PixelWidth:  cropped.Rect.Dx(),
		PixelHeight: cropped.Rect.Dy(),
	}, nil
}

// EncodePNG renders the capture as PNG bytes for the OCR engine and for
// debug dumps.
func (img *Image) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.Bitmap); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %v", err)
	}
	return buf.Bytes(), nil
}
