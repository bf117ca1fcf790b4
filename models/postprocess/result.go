// Package postprocess - Postprocessing utilities for detector outputs.
package postprocess

import (
	"fmt"

	"github.com/nvr-ai/janken/images"
)

// Result represents a single detection: a candidate while it is being decoded and a
// detection once it survives suppression.
type Result struct {
	// The bounding box of the result in original image pixels.
	Box images.Rect `json:"box"`
	// The confidence score of the result, in [0, 1].
	Score float32 `json:"score"`
	// The predicted class index of the result.
	Class int `json:"class"`
}

// String formats the result for logs.
func (r Result) String() string {
	return fmt.Sprintf("class %d (score %.2f): (%d, %d) %dx%d",
		r.Class, r.Score, r.Box.X1, r.Box.Y1, r.Box.Width(), r.Box.Height())
}
