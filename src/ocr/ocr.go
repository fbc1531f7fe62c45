package ocr

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"snaptranslate/src/capture"
)

// ErrUnavailable is returned when no recognition engine is compiled in
// (non-cgo builds) or the engine backend cannot be initialized.
var ErrUnavailable = errors.New("ocr engine unavailable")

// Block is one recognized text line with its informational confidence in
// [0,1]. Confidence never gates inclusion.
type Block struct {
	Text       string
	Confidence float64
}

// recognitionLanguages is the fixed superset the engine is configured
// with. A priority hint reorders it but never narrows what can be found.
var recognitionLanguages = []string{"eng", "vie", "chi_sim", "chi_tra"}

// Languages returns the engine language list reordered so that the
// priority entries come first. Unknown hints are ignored.
func Languages(priority []string) []string {
	out := make([]string, 0, len(recognitionLanguages))
	seen := make(map[string]bool, len(recognitionLanguages))
	for _, p := range priority {
		for _, l := range recognitionLanguages {
			if l == p && !seen[l] {
				out = append(out, l)
				seen[l] = true
			}
		}
	}
	for _, l := range recognitionLanguages {
		if !seen[l] {
			out = append(out, l)
		}
	}
	return out
}

// ChinesePriority is the language hint applied when the user prefers
// Chinese scripts to win on mixed-script captures.
var ChinesePriority = []string{"chi_sim", "chi_tra"}

// Join concatenates blocks in their spatial discovery order, one per line.
func Join(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, "\n")
}

// Recognizer runs the engine on captured images.
type Recognizer struct {
	engine engineFunc
}

type engineFunc func(png []byte, languages []string) ([]Block, error)

// New returns a Recognizer backed by the compiled-in engine.
func New() *Recognizer { return &Recognizer{engine: recognizeImage} }

// Recognize extracts text blocks from the image. "No text" is an empty
// slice, not an error. The context cancels recognition cooperatively: a
// cancelled call returns immediately with an empty result and the engine
// finishes in the background.
func (r *Recognizer) Recognize(ctx context.Context, img *capture.Image, priority []string) ([]Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := preprocess(img)
	if err != nil {
		return nil, err
	}

	if os.Getenv("SNAPTRANSLATE_DEBUG_SAVE_IMAGES") == "true" {
		name := "debug_ocr_input.png"
		if werr := os.WriteFile(name, data, 0600); werr != nil {
			log.Printf("Warning: could not save debug image: %v", werr)
		} else {
			log.Printf("ocr: saved preprocessed input to %s (%d bytes)", name, len(data))
		}
	}

	langs := Languages(priority)
	log.Printf("ocr: recognizing %dx%d px, languages %v", img.PixelWidth, img.PixelHeight, langs)

	type res struct {
		blocks []Block
		err    error
	}
	ch := make(chan res, 1)
	start := time.Now()
	go func() {
		blocks, err := r.engine(data, langs)
		ch <- res{blocks: blocks, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		log.Printf("ocr: %d blocks in %dms", len(out.blocks), time.Since(start).Milliseconds())
		return out.blocks, nil
	case <-ctx.Done():
		// Engine keeps running in the background; its result is discarded.
		log.Printf("ocr: cancelled after %dms", time.Since(start).Milliseconds())
		return nil, ctx.Err()
	}
}
