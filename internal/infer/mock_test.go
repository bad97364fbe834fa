package infer

import (
	"errors"
	"testing"

	"github.com/nandita/sightline/internal/detect"
)

func TestMockRunner(t *testing.T) {
	m := NewMockRunner()

	out := SingleBoxOutput(0.5, 0.5, 0.2, 0.2, 1, 3, 0.9, 100)
	m.SetOutput(out)

	got, err := m.Run(nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got.Shape != [3]int64{1, 7, 100} {
		t.Errorf("Shape = %v, want [1 7 100]", got.Shape)
	}
	if m.Runs() != 1 {
		t.Errorf("Runs() = %d, want 1", m.Runs())
	}

	wantErr := errors.New("boom")
	m.SetError(wantErr)
	if _, err := m.Run(nil); !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want %v", err, wantErr)
	}
}

func TestSingleBoxOutput_DecodesToOneDetection(t *testing.T) {
	// The fixture tensor must round-trip through the real decoder.
	out := SingleBoxOutput(0.5, 0.5, 0.2, 0.2, 1, 3, 0.9, 100)

	d := detect.NewDecoder(detect.ClassSet{
		Names:   []string{"a", "b", "c"},
		Default: 0.5,
	})

	dets, err := d.Decode(out.Data, out.Shape)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(dets) != 1 {
		t.Fatalf("len = %d, want 1", len(dets))
	}
	if dets[0].ClassID != 1 {
		t.Errorf("ClassID = %d, want 1", dets[0].ClassID)
	}
	if dets[0].Score != 0.9 {
		t.Errorf("Score = %f, want 0.9", dets[0].Score)
	}
}

func TestNewDNNRunner_MissingModel(t *testing.T) {
	if _, err := NewDNNRunner("/nonexistent/model.onnx", 640); err == nil {
		t.Error("NewDNNRunner() with a missing model should fail")
	}
}
