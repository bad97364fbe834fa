package capture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gocv.io/x/gocv"

	"github.com/nandita/sightline/internal/depth"
)

// ErrNoDepthFrames is returned by a source with nothing to deliver.
var ErrNoDepthFrames = errors.New("no depth frames available")

// DepthSource delivers 16-bit depth frames to the pipeline. Each call
// returns a frame the caller owns exclusively.
type DepthSource interface {
	ReadDepth() (*depth.Frame, error)
	Close() error
}

// StaticDepthSource returns the same in-memory frame on every read.
// Used in tests and when no depth hardware is attached.
type StaticDepthSource struct {
	mu    sync.Mutex
	frame *depth.Frame
}

// NewStaticDepthSource creates a source that always serves the given frame.
func NewStaticDepthSource(frame *depth.Frame) *StaticDepthSource {
	return &StaticDepthSource{frame: frame}
}

// SetFrame replaces the frame served on subsequent reads.
func (s *StaticDepthSource) SetFrame(frame *depth.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame
}

// ReadDepth returns a copy of the configured frame.
func (s *StaticDepthSource) ReadDepth() (*depth.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frame == nil {
		return nil, ErrNoDepthFrames
	}

	data := make([]uint16, len(s.frame.Data))
	copy(data, s.frame.Data)
	return &depth.Frame{Width: s.frame.Width, Height: s.frame.Height, Data: data}, nil
}

// Close is a no-op for the static source.
func (s *StaticDepthSource) Close() error { return nil }

// FileDepthSource replays 16-bit depth PNGs from a directory in filename
// order, wrapping around at the end. Useful for recorded walks.
type FileDepthSource struct {
	mu    sync.Mutex
	paths []string
	index int
}

// NewFileDepthSource scans dir for .png files and prepares them for
// replay in sorted filename order.
func NewFileDepthSource(dir string) (*FileDepthSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read depth dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".png" {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDepthFrames, dir)
	}

	return &FileDepthSource{paths: paths}, nil
}

// ReadDepth decodes the next PNG as an unscaled 16-bit image.
func (f *FileDepthSource) ReadDepth() (*depth.Frame, error) {
	f.mu.Lock()
	path := f.paths[f.index]
	f.index = (f.index + 1) % len(f.paths)
	f.mu.Unlock()

	mat := gocv.IMRead(path, gocv.IMReadAnyDepth)
	if mat.Empty() {
		return nil, fmt.Errorf("decode depth frame %s", path)
	}
	defer mat.Close()

	if mat.Type() != gocv.MatTypeCV16U {
		return nil, fmt.Errorf("depth frame %s is not 16-bit (type %v)", path, mat.Type())
	}

	raw, err := mat.DataPtrUint16()
	if err != nil {
		return nil, fmt.Errorf("depth frame %s: %w", path, err)
	}

	// Copy out: the Mat's buffer dies with the Mat.
	data := make([]uint16, len(raw))
	copy(data, raw)

	return &depth.Frame{
		Width:  mat.Cols(),
		Height: mat.Rows(),
		Data:   data,
	}, nil
}

// Close is a no-op; files are opened per read.
func (f *FileDepthSource) Close() error { return nil }
