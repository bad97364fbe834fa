//go:build !ocr

package ocr

// NewTesseractReader reports OCR as unavailable in builds without the
// "ocr" tag.
func NewTesseractReader(language string) (Reader, error) {
	return nil, ErrUnavailable
}
