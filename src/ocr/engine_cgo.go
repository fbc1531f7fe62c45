//go:build cgo

package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// recognizeImage runs tesseract over the prepared PNG. Blocks come back
// at text-line granularity in tesseract's reading order, which matches
// the top-to-bottom, left-to-right discovery order the pipeline expects.
func recognizeImage(png []byte, languages []string) ([]Block, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(languages...); err != nil {
		return nil, fmt.Errorf("failed to set languages: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		// Boxes can fail on some tesseract builds; fall back to plain text
		// as one block per line with unknown confidence.
		text, terr := client.Text()
		if terr != nil {
			return nil, fmt.Errorf("ocr failed: %w", terr)
		}
		return blocksFromText(text), nil
	}

	blocks := make([]Block, 0, len(boxes))
	for _, box := range boxes {
		line := strings.TrimRight(box.Word, "\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		blocks = append(blocks, Block{
			Text:       line,
			Confidence: box.Confidence / 100.0,
		})
	}
	return blocks, nil
}

func blocksFromText(text string) []Block {
	var blocks []Block
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		blocks = append(blocks, Block{Text: line})
	}
	return blocks
}
