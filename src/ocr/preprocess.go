package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"snaptranslate/src/capture"
)

// Captures smaller than this on either side are upscaled 2x before
// recognition; tesseract accuracy drops sharply on small UI text.
const minEngineSide = 300

func preprocess(img *capture.Image) ([]byte, error) {
	var prepared image.Image = effect.Grayscale(img.Bitmap)
	if img.PixelWidth < minEngineSide || img.PixelHeight < minEngineSide {
		prepared = imaging.Resize(prepared, img.PixelWidth*2, img.PixelHeight*2, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return nil, fmt.Errorf("failed to encode preprocessed image: %v", err)
	}
	return buf.Bytes(), nil
}
