// Package depth analyzes 16-bit depth frames and turns them into
// left/center/right obstacle distance estimates and a navigation directive.
package depth

import "sync"

// UnknownDistance is reported for a zone that produced no valid reading.
// Callers must treat it as "unknown or far", not as a real distance.
const UnknownDistance = 9999

// Frame is a single row-major depth image in millimeters.
// A value of 0 means the sensor could not resolve that pixel.
type Frame struct {
	Width  int
	Height int
	Data   []uint16
}

// Params controls how a frame is sampled and which readings count.
type Params struct {
	// BandStart and BandEnd are fractions of the frame height bounding
	// the horizontal scan band (end exclusive).
	BandStart float64
	BandEnd   float64

	// Stride is the row/column sampling step inside the band.
	Stride int

	// MinValidMM and MaxValidMM bound the readings that participate in
	// zone averaging. Values outside are ignored entirely.
	MinValidMM uint16
	MaxValidMM uint16
}

// DefaultParams returns the shipped sampling parameters: a band covering
// the middle 20% of the frame, every 4th pixel, readings between 10cm
// and 5m.
func DefaultParams() Params {
	return Params{
		BandStart:  0.4,
		BandEnd:    0.6,
		Stride:     4,
		MinValidMM: 100,
		MaxValidMM: 5000,
	}
}

// ZoneReport holds the average obstacle distance per horizontal third of
// the frame, in millimeters, or UnknownDistance for zones with no valid
// readings.
type ZoneReport struct {
	Left   int32 `json:"left"`
	Center int32 `json:"center"`
	Right  int32 `json:"right"`
}

// Status says whether a frame contributed a report or was abandoned.
type Status int

const (
	// StatusOK means the frame was analyzed and Report is meaningful.
	StatusOK Status = iota
	// StatusSkipped means the frame was abandoned; callers should keep
	// the previous navigation state and carry on.
	StatusSkipped
)

// Result is the outcome of analyzing one frame.
type Result struct {
	Report ZoneReport
	Status Status
}

// Analyzer computes zone averages from depth frames. The zero value is
// not usable; construct with NewAnalyzer. Safe for concurrent use.
type Analyzer struct {
	mu     sync.RWMutex
	params Params
}

// NewAnalyzer creates an Analyzer with the given sampling parameters.
func NewAnalyzer(params Params) *Analyzer {
	if params.Stride <= 0 {
		params.Stride = 1
	}
	return &Analyzer{params: params}
}

// SetParams replaces the sampling parameters for subsequent frames.
func (a *Analyzer) SetParams(params Params) {
	if params.Stride <= 0 {
		params.Stride = 1
	}
	a.mu.Lock()
	a.params = params
	a.mu.Unlock()
}

// Params returns the current sampling parameters.
func (a *Analyzer) Params() Params {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.params
}

// zoneAccum accumulates readings for one zone.
type zoneAccum struct {
	sum   int64
	count int32
}

func (z *zoneAccum) add(mm uint16) {
	z.sum += int64(mm)
	z.count++
}

func (z *zoneAccum) average() int32 {
	if z.count == 0 {
		return UnknownDistance
	}
	return int32(z.sum / int64(z.count))
}

// Analyze scans the frame's middle band at a fixed stride and averages
// valid readings into left/center/right zones. The frame is never
// mutated. Any panic while reading the buffer abandons the frame with
// StatusSkipped; a mismatched buffer length only skips the out-of-range
// samples.
func (a *Analyzer) Analyze(f *Frame) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Status: StatusSkipped}
		}
	}()

	if f == nil || f.Data == nil || f.Width <= 0 || f.Height <= 0 {
		return Result{Status: StatusSkipped}
	}

	params := a.Params()

	var left, center, right zoneAccum

	startY := int(params.BandStart * float64(f.Height))
	endY := int(params.BandEnd * float64(f.Height))

	// Zone boundaries use integer division so that column assignment is
	// exactly reproducible across frame sizes.
	leftEdge := f.Width / 3
	rightEdge := 2 * f.Width / 3

	for y := startY; y < endY; y += params.Stride {
		for x := 0; x < f.Width; x += params.Stride {
			idx := y*f.Width + x
			if idx >= len(f.Data) {
				// Tensor and image sizes occasionally disagree by a
				// row; a short buffer is not worth failing the frame.
				continue
			}

			mm := f.Data[idx]
			if mm < params.MinValidMM || mm > params.MaxValidMM {
				continue
			}

			switch {
			case x < leftEdge:
				left.add(mm)
			case x < rightEdge:
				center.add(mm)
			default:
				right.add(mm)
			}
		}
	}

	return Result{
		Report: ZoneReport{
			Left:   left.average(),
			Center: center.average(),
			Right:  right.average(),
		},
		Status: StatusOK,
	}
}
