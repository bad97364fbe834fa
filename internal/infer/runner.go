// Package infer runs detection models over camera frames and hands the
// raw output tensors to the decoding pipeline.
package infer

import "gocv.io/x/gocv"

// Output is one raw model output tensor: a flat float array plus its
// [batch, d1, d2] shape. Which of d1/d2 is the anchor dimension is
// resolved downstream by the decoder.
type Output struct {
	Data  []float32
	Shape [3]int64
}

// Runner defines the interface for model inference implementations.
type Runner interface {
	// Run executes the model on a frame and returns the raw output
	// tensor. The returned Output is owned by the caller.
	Run(frame *gocv.Mat) (Output, error)

	// Close releases any resources held by the runner.
	Close() error
}
