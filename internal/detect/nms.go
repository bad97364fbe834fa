package detect

import (
	"sort"

	"github.com/nandita/sightline/internal/geom"
)

// Resolver removes duplicate and conflicting detections. Two thresholds
// apply: DuplicateIoU is the looser bound catching the same object
// detected twice under one class, ConflictIoU the stricter bound that
// fires regardless of class when two boxes cover essentially the same
// object and the model is confused about its label.
type Resolver struct {
	DuplicateIoU float32
	ConflictIoU  float32
}

// NewResolver returns a Resolver with the shipped thresholds.
func NewResolver() *Resolver {
	return &Resolver{
		DuplicateIoU: 0.45,
		ConflictIoU:  0.85,
	}
}

// Resolve runs greedy non-maximum suppression. Detections are sorted by
// score descending (stable, so equal scores keep their input order),
// then the best remaining detection is accepted and every lower-scoring
// candidate overlapping it beyond a threshold is discarded:
//
//   - same class and IoU above DuplicateIoU: duplicate, removed
//   - any class and IoU above ConflictIoU: conflict, removed;
//     the higher-scoring label wins the object
//
// The result is ordered by descending score. Resolve is deterministic
// for deterministic input ordering, and idempotent: running it on its
// own output changes nothing.
func (r *Resolver) Resolve(detections []Detection) []Detection {
	if len(detections) == 0 {
		return nil
	}

	sorted := make([]Detection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	kept := make([]Detection, 0, len(sorted))
	removed := make([]bool, len(sorted))

	for i := range sorted {
		if removed[i] {
			continue
		}
		best := sorted[i]
		kept = append(kept, best)

		for j := i + 1; j < len(sorted); j++ {
			if removed[j] {
				continue
			}
			overlap := geom.IoU(best.Box, sorted[j].Box)
			if overlap > r.DuplicateIoU && sorted[j].ClassID == best.ClassID {
				removed[j] = true
				continue
			}
			if overlap > r.ConflictIoU {
				removed[j] = true
			}
		}
	}

	return kept
}
