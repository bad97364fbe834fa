package detect

import (
	"errors"
	"fmt"

	"github.com/nandita/sightline/internal/geom"
)

// ErrUnsupportedShape is returned for tensors the decoder cannot
// interpret, such as shapes with fewer than 5 channels.
var ErrUnsupportedShape = errors.New("unsupported tensor shape")

// geometryChannels is the number of leading channels per anchor holding
// box geometry (cx, cy, w, h); the remainder are class scores.
const geometryChannels = 4

// scaleProbe is how many leading anchors are sampled to decide whether
// coordinates are normalized or already in pixels.
const scaleProbe = 50

// pixelSpaceCutoff: a normalized coordinate never exceeds this, so any
// larger x means the model emitted pixel-space values.
const pixelSpaceCutoff = 5.0

// Decoder converts a flat model output tensor into candidate detections.
type Decoder struct {
	// InputSize is the square model input resolution in pixels.
	InputSize float32
	// Classes supplies per-class acceptance thresholds.
	Classes ClassSet
	// MaxBoxFraction rejects boxes wider or taller than this fraction of
	// InputSize. Guards against a degenerate giant anchor.
	MaxBoxFraction float32
}

// NewDecoder creates a Decoder with the shipped defaults for the given
// class set.
func NewDecoder(classes ClassSet) *Decoder {
	return &Decoder{
		InputSize:      640,
		Classes:        classes,
		MaxBoxFraction: 0.95,
	}
}

// Decode interprets the tensor and returns every anchor whose best class
// score passes that class's threshold, minus size-sanity rejects. The
// output order is unspecified; the resolver sorts downstream. Identical
// input always yields the identical detection set.
//
// The layout (anchor-major vs channel-major) is inferred from the shape
// alone, since exported models disagree on orientation: the larger of
// the two trailing dimensions is the anchor count.
func (d *Decoder) Decode(data []float32, shape [3]int64) ([]Detection, error) {
	if shape[0] != 1 {
		return nil, fmt.Errorf("%w: batch %d (want 1)", ErrUnsupportedShape, shape[0])
	}

	anchors := int(shape[1])
	channels := int(shape[2])
	anchorMajor := true
	if shape[1] <= shape[2] {
		// Channel-major: [1, channels, anchors].
		anchors = int(shape[2])
		channels = int(shape[1])
		anchorMajor = false
	}

	if channels < geometryChannels+1 {
		return nil, fmt.Errorf("%w: %d channels (want at least %d)",
			ErrUnsupportedShape, channels, geometryChannels+1)
	}
	if len(data) < anchors*channels {
		return nil, fmt.Errorf("%w: %d values for %dx%d tensor",
			ErrUnsupportedShape, len(data), anchors, channels)
	}

	// at reads channel c of anchor i regardless of layout.
	at := func(i, c int) float32 {
		if anchorMajor {
			return data[i*channels+c]
		}
		return data[c*anchors+i]
	}

	scale := d.coordinateScale(at, anchors)
	maxExtent := d.MaxBoxFraction * d.InputSize

	detections := make([]Detection, 0, 64)
	for i := 0; i < anchors; i++ {
		classID, score := bestClass(at, i, channels)
		if score < d.Classes.Threshold(classID) {
			continue
		}

		w := at(i, 2) * scale
		h := at(i, 3) * scale
		if w > maxExtent || h > maxExtent {
			continue
		}

		cx := at(i, 0) * scale
		cy := at(i, 1) * scale
		detections = append(detections, Detection{
			Box:     geom.FromCenter(cx, cy, w, h),
			ClassID: classID,
			Score:   score,
		})
	}

	return detections, nil
}

// coordinateScale samples leading anchor x-coordinates to decide whether
// the tensor is normalized [0,1] (multiply by the input size) or already
// pixel-space (multiply by 1).
func (d *Decoder) coordinateScale(at func(i, c int) float32, anchors int) float32 {
	probe := scaleProbe
	if anchors < probe {
		probe = anchors
	}
	for i := 0; i < probe; i++ {
		if at(i, 0) > pixelSpaceCutoff {
			return 1
		}
	}
	return d.InputSize
}

// bestClass returns the stable argmax over the score channels of one
// anchor: on an exact tie the lowest class index wins.
func bestClass(at func(i, c int) float32, i, channels int) (int, float32) {
	bestID := 0
	bestScore := at(i, geometryChannels)
	for c := geometryChannels + 1; c < channels; c++ {
		if s := at(i, c); s > bestScore {
			bestScore = s
			bestID = c - geometryChannels
		}
	}
	return bestID, bestScore
}
