// Package detect turns raw model output tensors into de-duplicated,
// labeled bounding boxes: decode, per-class thresholding, non-maximum
// suppression, and cross-class conflict resolution.
package detect

import (
	"github.com/nandita/sightline/internal/geom"
)

// Detection is one surviving labeled box. Detections live for a single
// frame; nothing retains them across calls.
type Detection struct {
	Box     geom.Box `json:"box"`
	ClassID int      `json:"class_id"`
	Score   float32  `json:"score"`
}

// ClassSet describes the classes one model emits, with per-class score
// thresholds. Classes absent from Thresholds use Default.
type ClassSet struct {
	Names      []string
	Thresholds map[int]float32
	Default    float32
}

// Name returns the label for a class id, or "unknown" when out of range.
func (c ClassSet) Name(id int) string {
	if id < 0 || id >= len(c.Names) {
		return "unknown"
	}
	return c.Names[id]
}

// Threshold returns the acceptance threshold for a class id.
func (c ClassSet) Threshold(id int) float32 {
	if t, ok := c.Thresholds[id]; ok {
		return t
	}
	return c.Default
}
