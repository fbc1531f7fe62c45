package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

// SVG source for the tray icon: a selection rectangle with a language glyph.
// Kept as the design reference; Icon rasterizes the same motif since systray
// wants bitmap bytes.
const SVGContent = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <!-- Selection rectangle -->
  <rect x="2" y="3" width="9" height="7" fill="none" stroke="#0078d4" stroke-width="1.5" stroke-dasharray="2,1" opacity="0.8"/>

  <!-- "A" source glyph -->
  <text x="4" y="9" font-family="sans-serif" font-size="5" fill="#333333">A</text>

  <!-- Arrow -->
  <line x1="9" y1="11" x2="12" y2="13" stroke="#666666" stroke-width="1" stroke-linecap="round"/>

  <!-- Target glyph -->
  <text x="11" y="15" font-family="sans-serif" font-size="5" fill="#333333">&#x6587;</text>
</svg>`

var (
	iconOnce sync.Once
	iconPNG  []byte
)

// Icon returns the tray icon as 16x16 PNG bytes, rasterized once.
func Icon() []byte {
	iconOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, 16, 16))
		border := color.RGBA{R: 0x00, G: 0x78, B: 0xD4, A: 0xFF}
		accent := color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}

		// Dashed selection rectangle.
		for x := 2; x <= 11; x++ {
			if x%3 != 0 {
				img.SetRGBA(x, 3, border)
				img.SetRGBA(x, 10, border)
			}
		}
		for y := 3; y <= 10; y++ {
			if y%3 != 0 {
				img.SetRGBA(2, y, border)
				img.SetRGBA(11, y, border)
			}
		}

		// Arrow stroke toward the translated glyph corner.
		for i := 0; i < 4; i++ {
			img.SetRGBA(9+i, 11+i, accent)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return
		}
		iconPNG = buf.Bytes()
	})
	return iconPNG
}
