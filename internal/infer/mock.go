package infer

import (
	"gocv.io/x/gocv"
)

// MockRunner is a test implementation of the Runner interface.
// It lets tests control the tensor handed to the decoder.
type MockRunner struct {
	output Output
	err    error
	runs   int
}

// NewMockRunner creates a MockRunner returning an empty tensor.
func NewMockRunner() *MockRunner {
	return &MockRunner{}
}

// SetOutput sets the tensor that Run will return.
func (m *MockRunner) SetOutput(out Output) {
	m.output = out
}

// SetError sets the error that Run will return.
func (m *MockRunner) SetError(err error) {
	m.err = err
}

// Runs returns how many times Run has been called.
func (m *MockRunner) Runs() int {
	return m.runs
}

// Run returns the pre-configured output or error.
func (m *MockRunner) Run(frame *gocv.Mat) (Output, error) {
	m.runs++
	if m.err != nil {
		return Output{}, m.err
	}
	return m.output, nil
}

// Close is a no-op for the mock runner.
func (m *MockRunner) Close() error {
	return nil
}

// SingleBoxOutput builds a channel-major tensor describing one
// normalized box with the given class scored at the given confidence.
// numClasses fixes the channel count; anchors pads the anchor dimension
// so layout detection behaves as it does on real model outputs.
func SingleBoxOutput(cx, cy, w, h float32, classID, numClasses int, score float32, anchors int) Output {
	channels := 4 + numClasses
	data := make([]float32, channels*anchors)

	// Anchor 0 carries the box; the rest stay zero.
	data[0*anchors] = cx
	data[1*anchors] = cy
	data[2*anchors] = w
	data[3*anchors] = h
	data[(4+classID)*anchors] = score

	return Output{
		Data:  data,
		Shape: [3]int64{1, int64(channels), int64(anchors)},
	}
}
