package infer

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// DNNRunner executes an ONNX detection model through OpenCV's DNN
// module. One runner wraps one loaded network and is safe for use from
// a single pipeline goroutine; the mutex only guards Close racing a
// late Run.
type DNNRunner struct {
	net       gocv.Net
	inputSize int
	mu        sync.Mutex
	closed    bool
}

// NewDNNRunner loads the ONNX model at path. inputSize is the square
// input resolution the model was exported with (typically 640).
func NewDNNRunner(path string, inputSize int) (*DNNRunner, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	net := gocv.ReadNetFromONNX(path)
	if net.Empty() {
		return nil, fmt.Errorf("load model %s: empty network", path)
	}

	return &DNNRunner{net: net, inputSize: inputSize}, nil
}

// Run resizes the frame into the model's input blob, forwards it, and
// copies the output tensor out of OpenCV-owned memory.
func (r *DNNRunner) Run(frame *gocv.Mat) (Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Output{}, errors.New("runner is closed")
	}
	if frame == nil || frame.Empty() {
		return Output{}, errors.New("empty frame")
	}

	blob := gocv.BlobFromImage(*frame, 1.0/255.0,
		image.Point{X: r.inputSize, Y: r.inputSize},
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	r.net.SetInput(blob, "")

	out := r.net.Forward("")
	defer out.Close()

	shape, err := tensorShape(&out)
	if err != nil {
		return Output{}, err
	}

	raw, err := out.DataPtrFloat32()
	if err != nil {
		return Output{}, fmt.Errorf("read output tensor: %w", err)
	}

	// Copy out: the Mat's buffer dies with the Mat.
	data := make([]float32, len(raw))
	copy(data, raw)

	return Output{Data: data, Shape: shape}, nil
}

// Close releases the network.
func (r *DNNRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	return r.net.Close()
}

// tensorShape reads a Mat's dimensions as a [batch, d1, d2] shape.
func tensorShape(m *gocv.Mat) ([3]int64, error) {
	size := m.Size()
	if len(size) != 3 {
		return [3]int64{}, fmt.Errorf("output tensor has %d dims, want 3", len(size))
	}
	return [3]int64{int64(size[0]), int64(size[1]), int64(size[2])}, nil
}
