// Package config holds runtime tuning for the perception pipeline. The
// schema matches the /api/params endpoint so the same JSON drives both
// startup configuration and runtime updates.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nandita/sightline/internal/depth"
	"github.com/nandita/sightline/internal/detect"
)

// Tuning is the root tuning document. All fields are pointers so a
// partial JSON file only overrides what it names; nil falls back to the
// built-in default.
type Tuning struct {
	// Depth zone params
	BandStart  *float64 `json:"band_start,omitempty"`
	BandEnd    *float64 `json:"band_end,omitempty"`
	Stride     *int     `json:"stride,omitempty"`
	MinValidMM *int     `json:"min_valid_mm,omitempty"`
	MaxValidMM *int     `json:"max_valid_mm,omitempty"`

	// Navigation policy params
	StopMM *int `json:"stop_mm,omitempty"`
	WarnMM *int `json:"warn_mm,omitempty"`

	// Detection params
	DefaultThreshold *float64        `json:"default_threshold,omitempty"`
	ClassThresholds  map[int]float64 `json:"class_thresholds,omitempty"`
	DuplicateIoU     *float64        `json:"duplicate_iou,omitempty"`
	ConflictIoU      *float64        `json:"conflict_iou,omitempty"`
	InputSize        *int            `json:"input_size,omitempty"`
	MaxBoxFraction   *float64        `json:"max_box_fraction,omitempty"`

	// Pipeline params
	FPS              *int    `json:"fps,omitempty"`
	AnnounceCooldown *string `json:"announce_cooldown,omitempty"` // duration string like "3s"
}

// Load reads a Tuning from a JSON file. Omitted fields keep their
// defaults, so partial configs are safe.
func Load(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("tuning file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read tuning file: %w", err)
	}

	cfg := &Tuning{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse tuning JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}
	return cfg, nil
}

// Validate checks that set fields hold usable values.
func (t *Tuning) Validate() error {
	if t.BandStart != nil && (*t.BandStart < 0 || *t.BandStart > 1) {
		return fmt.Errorf("band_start must be between 0 and 1, got %f", *t.BandStart)
	}
	if t.BandEnd != nil && (*t.BandEnd < 0 || *t.BandEnd > 1) {
		return fmt.Errorf("band_end must be between 0 and 1, got %f", *t.BandEnd)
	}
	if t.BandStart != nil && t.BandEnd != nil && *t.BandStart >= *t.BandEnd {
		return fmt.Errorf("band_start %f must be below band_end %f", *t.BandStart, *t.BandEnd)
	}
	if t.Stride != nil && *t.Stride < 1 {
		return fmt.Errorf("stride must be at least 1, got %d", *t.Stride)
	}
	if t.MinValidMM != nil && t.MaxValidMM != nil && *t.MinValidMM > *t.MaxValidMM {
		return fmt.Errorf("min_valid_mm %d exceeds max_valid_mm %d", *t.MinValidMM, *t.MaxValidMM)
	}
	if t.StopMM != nil && *t.StopMM < 0 {
		return fmt.Errorf("stop_mm must be non-negative, got %d", *t.StopMM)
	}
	if t.WarnMM != nil && *t.WarnMM < 0 {
		return fmt.Errorf("warn_mm must be non-negative, got %d", *t.WarnMM)
	}
	for id, thr := range t.ClassThresholds {
		if thr < 0 || thr > 1 {
			return fmt.Errorf("class_thresholds[%d] must be between 0 and 1, got %f", id, thr)
		}
	}
	if t.DefaultThreshold != nil && (*t.DefaultThreshold < 0 || *t.DefaultThreshold > 1) {
		return fmt.Errorf("default_threshold must be between 0 and 1, got %f", *t.DefaultThreshold)
	}
	if t.DuplicateIoU != nil && (*t.DuplicateIoU < 0 || *t.DuplicateIoU > 1) {
		return fmt.Errorf("duplicate_iou must be between 0 and 1, got %f", *t.DuplicateIoU)
	}
	if t.ConflictIoU != nil && (*t.ConflictIoU < 0 || *t.ConflictIoU > 1) {
		return fmt.Errorf("conflict_iou must be between 0 and 1, got %f", *t.ConflictIoU)
	}
	if t.InputSize != nil && *t.InputSize < 1 {
		return fmt.Errorf("input_size must be positive, got %d", *t.InputSize)
	}
	if t.MaxBoxFraction != nil && (*t.MaxBoxFraction <= 0 || *t.MaxBoxFraction > 1) {
		return fmt.Errorf("max_box_fraction must be in (0, 1], got %f", *t.MaxBoxFraction)
	}
	if t.FPS != nil && *t.FPS < 1 {
		return fmt.Errorf("fps must be positive, got %d", *t.FPS)
	}
	if t.AnnounceCooldown != nil && *t.AnnounceCooldown != "" {
		if _, err := time.ParseDuration(*t.AnnounceCooldown); err != nil {
			return fmt.Errorf("invalid announce_cooldown %q: %w", *t.AnnounceCooldown, err)
		}
	}
	return nil
}

// DepthParams resolves the depth zone parameters with defaults.
func (t *Tuning) DepthParams() depth.Params {
	p := depth.DefaultParams()
	if t.BandStart != nil {
		p.BandStart = *t.BandStart
	}
	if t.BandEnd != nil {
		p.BandEnd = *t.BandEnd
	}
	if t.Stride != nil {
		p.Stride = *t.Stride
	}
	if t.MinValidMM != nil {
		p.MinValidMM = uint16(*t.MinValidMM)
	}
	if t.MaxValidMM != nil {
		p.MaxValidMM = uint16(*t.MaxValidMM)
	}
	return p
}

// Policy resolves the navigation policy with defaults.
func (t *Tuning) Policy() depth.Policy {
	p := depth.DefaultPolicy()
	if t.StopMM != nil {
		p.StopMM = int32(*t.StopMM)
	}
	if t.WarnMM != nil {
		p.WarnMM = int32(*t.WarnMM)
	}
	return p
}

// Resolver resolves the overlap suppression thresholds with defaults.
func (t *Tuning) Resolver() *detect.Resolver {
	r := detect.NewResolver()
	if t.DuplicateIoU != nil {
		r.DuplicateIoU = float32(*t.DuplicateIoU)
	}
	if t.ConflictIoU != nil {
		r.ConflictIoU = float32(*t.ConflictIoU)
	}
	return r
}

// ApplyClasses overlays the tuned thresholds onto a class set.
func (t *Tuning) ApplyClasses(cs *detect.ClassSet) {
	if t.DefaultThreshold != nil {
		cs.Default = float32(*t.DefaultThreshold)
	}
	for id, thr := range t.ClassThresholds {
		if cs.Thresholds == nil {
			cs.Thresholds = make(map[int]float32)
		}
		cs.Thresholds[id] = float32(thr)
	}
}

// ApplyDecoder overlays the tuned decode parameters onto a decoder.
func (t *Tuning) ApplyDecoder(d *detect.Decoder) {
	if t.InputSize != nil {
		d.InputSize = float32(*t.InputSize)
	}
	if t.MaxBoxFraction != nil {
		d.MaxBoxFraction = float32(*t.MaxBoxFraction)
	}
	t.ApplyClasses(&d.Classes)
}

// GetInputSize returns the model input size or the default.
func (t *Tuning) GetInputSize() int {
	if t.InputSize == nil {
		return 640
	}
	return *t.InputSize
}

// GetFPS returns the pipeline frame rate or the default.
func (t *Tuning) GetFPS() int {
	if t.FPS == nil {
		return 5
	}
	return *t.FPS
}

// GetAnnounceCooldown parses announce_cooldown or returns the default.
func (t *Tuning) GetAnnounceCooldown() time.Duration {
	if t.AnnounceCooldown == nil || *t.AnnounceCooldown == "" {
		return 3 * time.Second
	}
	d, err := time.ParseDuration(*t.AnnounceCooldown)
	if err != nil {
		return 3 * time.Second
	}
	return d
}

// Merge overlays other onto t: fields set in other win. Used by the
// params API to apply partial updates.
func (t *Tuning) Merge(other *Tuning) {
	if other == nil {
		return
	}
	if other.BandStart != nil {
		t.BandStart = other.BandStart
	}
	if other.BandEnd != nil {
		t.BandEnd = other.BandEnd
	}
	if other.Stride != nil {
		t.Stride = other.Stride
	}
	if other.MinValidMM != nil {
		t.MinValidMM = other.MinValidMM
	}
	if other.MaxValidMM != nil {
		t.MaxValidMM = other.MaxValidMM
	}
	if other.StopMM != nil {
		t.StopMM = other.StopMM
	}
	if other.WarnMM != nil {
		t.WarnMM = other.WarnMM
	}
	if other.DefaultThreshold != nil {
		t.DefaultThreshold = other.DefaultThreshold
	}
	for id, thr := range other.ClassThresholds {
		if t.ClassThresholds == nil {
			t.ClassThresholds = make(map[int]float64)
		}
		t.ClassThresholds[id] = thr
	}
	if other.DuplicateIoU != nil {
		t.DuplicateIoU = other.DuplicateIoU
	}
	if other.ConflictIoU != nil {
		t.ConflictIoU = other.ConflictIoU
	}
	if other.InputSize != nil {
		t.InputSize = other.InputSize
	}
	if other.MaxBoxFraction != nil {
		t.MaxBoxFraction = other.MaxBoxFraction
	}
	if other.FPS != nil {
		t.FPS = other.FPS
	}
	if other.AnnounceCooldown != nil {
		t.AnnounceCooldown = other.AnnounceCooldown
	}
}
