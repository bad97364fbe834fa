// Package geom provides axis-aligned bounding box geometry shared by the
// detection pipeline.
package geom

// Box is an axis-aligned bounding box in pixel coordinates.
// Invariants: Right >= Left and Bottom >= Top.
type Box struct {
	Left   float32 `json:"left"`
	Top    float32 `json:"top"`
	Right  float32 `json:"right"`
	Bottom float32 `json:"bottom"`
}

// FromCenter builds a Box from a center point and extents.
func FromCenter(cx, cy, w, h float32) Box {
	return Box{
		Left:   cx - w/2,
		Top:    cy - h/2,
		Right:  cx + w/2,
		Bottom: cy + h/2,
	}
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float32 {
	return b.Right - b.Left
}

// Height returns the vertical extent of the box.
func (b Box) Height() float32 {
	return b.Bottom - b.Top
}

// Area returns the area of the box. Degenerate boxes have area 0.
func (b Box) Area() float32 {
	w := b.Width()
	h := b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Intersection returns the area of overlap between two boxes,
// or 0 if they do not overlap.
func Intersection(a, b Box) float32 {
	left := maxF(a.Left, b.Left)
	top := maxF(a.Top, b.Top)
	right := minF(a.Right, b.Right)
	bottom := minF(a.Bottom, b.Bottom)

	if right <= left || bottom <= top {
		return 0
	}
	return (right - left) * (bottom - top)
}

// IoU returns the intersection-over-union of two boxes in [0, 1].
// A pair whose union has zero area yields 0, so degenerate boxes
// never divide by zero.
func IoU(a, b Box) float32 {
	inter := Intersection(a, b)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
