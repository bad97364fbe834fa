//go:build ocr

package ocr

import (
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// TesseractReader recognizes text using the native Tesseract engine via
// gosseract. One client is reused across frames; Tesseract clients are
// not goroutine safe, so calls are serialized.
type TesseractReader struct {
	client *gosseract.Client
	mu     sync.Mutex
}

// NewTesseractReader creates a reader for the given language code
// (for example "eng").
func NewTesseractReader(language string) (Reader, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("set ocr language: %w", err)
	}
	return &TesseractReader{client: client}, nil
}

// Recognize encodes the frame as PNG and runs Tesseract over it.
func (r *TesseractReader) Recognize(frame *gocv.Mat) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if frame == nil || frame.Empty() {
		return "", nil
	}

	buf, err := gocv.IMEncode(".png", *frame)
	if err != nil {
		return "", fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	if err := r.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("set ocr image: %w", err)
	}

	text, err := r.client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// Close shuts down the Tesseract client.
func (r *TesseractReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client.Close()
}
