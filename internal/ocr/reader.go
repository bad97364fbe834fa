// Package ocr recognizes printed text in camera frames for read mode.
//
// The Tesseract-backed reader is only compiled with the "ocr" build tag
// since it needs the native Tesseract libraries; default builds get a
// reader that reports OCR as unavailable.
package ocr

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrUnavailable is returned when the binary was built without OCR
// support.
var ErrUnavailable = errors.New("ocr support not built in")

// Reader recognizes text in a camera frame.
type Reader interface {
	// Recognize returns the text found in the frame, or an empty string
	// when there is none.
	Recognize(frame *gocv.Mat) (string, error)

	// Close releases any resources held by the reader.
	Close() error
}

// MockReader is a test implementation of the Reader interface.
type MockReader struct {
	text string
	err  error
}

// NewMockReader creates a MockReader returning empty text.
func NewMockReader() *MockReader {
	return &MockReader{}
}

// SetText sets the text that Recognize will return.
func (m *MockReader) SetText(text string) { m.text = text }

// SetError sets the error that Recognize will return.
func (m *MockReader) SetError(err error) { m.err = err }

// Recognize returns the pre-configured text or error.
func (m *MockReader) Recognize(frame *gocv.Mat) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

// Close is a no-op for the mock reader.
func (m *MockReader) Close() error { return nil }
