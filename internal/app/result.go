package app

import (
	"time"

	"github.com/nandita/sightline/internal/depth"
	"github.com/nandita/sightline/internal/detect"
)

// FrameResult is the outcome of processing one frame. Results carry the
// generation they were computed under so consumers can discard output
// that belongs to an earlier mode.
type FrameResult struct {
	Generation uint64             `json:"generation"`
	Mode       string             `json:"mode"`
	Zones      *depth.ZoneReport  `json:"zones,omitempty"`
	Skipped    bool               `json:"skipped,omitempty"`
	Directive  string             `json:"directive,omitempty"`
	Detections []detect.Detection `json:"detections,omitempty"`
	Labels     []string           `json:"labels,omitempty"`
	Text       string             `json:"text,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}
