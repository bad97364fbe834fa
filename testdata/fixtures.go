// Package testdata synthesizes camera and depth fixtures for tests.
package testdata

import (
	"gocv.io/x/gocv"

	"github.com/nandita/sightline/internal/depth"
)

// ZoneFrame builds a depth frame whose horizontal thirds read the given
// distances in millimeters.
func ZoneFrame(width, height int, left, center, right uint16) *depth.Frame {
	data := make([]uint16, width*height)
	leftEdge := width / 3
	rightEdge := 2 * width / 3
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			switch {
			case x < leftEdge:
				data[y*width+x] = left
			case x < rightEdge:
				data[y*width+x] = center
			default:
				data[y*width+x] = right
			}
		}
	}
	return &depth.Frame{Width: width, Height: height, Data: data}
}

// UniformFrame builds a depth frame reading the same distance everywhere.
func UniformFrame(width, height int, mm uint16) *depth.Frame {
	return ZoneFrame(width, height, mm, mm, mm)
}

// ColorFrame returns a blank BGR camera frame. The caller owns the Mat.
func ColorFrame(width, height int) *gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	return &mat
}
