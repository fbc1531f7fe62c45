//go:build !cgo

package ocr

// Non-cgo builds carry no tesseract bindings.
func recognizeImage(png []byte, languages []string) ([]Block, error) {
	return nil, ErrUnavailable
}
