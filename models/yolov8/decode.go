// Package yolov8 - Decoding of anchor-free YOLOv8 detection heads trained on hand signs.
package yolov8

import (
	"github.com/chewxy/math32"
	"github.com/nvr-ai/janken/common"
	"github.com/nvr-ai/janken/images"
	"github.com/nvr-ai/janken/janken"
	"github.com/nvr-ai/janken/models/model"
	"github.com/nvr-ai/janken/models/postprocess"
)

// boxColumns is the number of leading box values (cx, cy, w, h) in every row.
const boxColumns = 4

// scale holds the input-to-image scale factors of one decode pass.
type scale struct {
	x, y float32
}

func newScale(dims model.Dimensions) scale {
	return scale{
		x: float32(dims.ImageWidth) / float32(dims.InputWidth),
		y: float32(dims.ImageHeight) / float32(dims.InputHeight),
	}
}

func validateConfidence(confidence float32) error {
	return common.ValidateThreshold("confidence_threshold", confidence)
}

// wellFormed reports whether rows can be split into rows of 4+numClasses values.
func wellFormed(rows []float32, numClasses int, dims model.Dimensions) bool {
	channels := boxColumns + numClasses
	return numClasses >= 1 && len(rows) > 0 && len(rows)%channels == 0 && dims.Valid()
}

// argmax returns the index and value of the largest score. The first maximum wins.
func argmax(scores []float32) (int, float32) {
	best, bestScore := 0, scores[0]
	for i := 1; i < len(scores); i++ {
		if scores[i] > bestScore {
			best, bestScore = i, scores[i]
		}
	}
	return best, bestScore
}

// finite reports whether no value in row is NaN or infinite.
func finite(row []float32) bool {
	for _, v := range row {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// candidate converts one row that already passed the confidence floor into a result. Rows
// whose class is not a hand, or whose values are not finite probabilities, are rejected.
func candidate(row []float32, class int, score float32, s scale) (postprocess.Result, bool) {
	if _, ok := janken.HandFromClass(class); !ok {
		return postprocess.Result{}, false
	}
	if score > 1 || !finite(row) {
		return postprocess.Result{}, false
	}

	cx, cy, w, h := row[0], row[1], row[2], row[3]
	left := int((cx - w/2) * s.x)
	top := int((cy - h/2) * s.y)
	width := int(w * s.x)
	height := int(h * s.y)

	return postprocess.Result{
		Box:   images.RectFromLTWH(left, top, width, height),
		Score: score,
		Class: class,
	}, true
}

// Decode converts row-major candidate rows into hand candidates.
//
// Each row holds cx, cy, w, h in model input pixels followed by numClasses scores. A row is
// kept when its best score reaches confidence and its best class is a hand; its box is then
// rescaled to original image pixels and converted to left/top/width/height, truncating to
// integers. The output keeps row order. Malformed input yields no candidates.
//
// Arguments:
//   - rows: The [N, 4+numClasses] tensor, flattened row by row.
//   - numClasses: The number of score columns per row.
//   - dims: The model input and original image sizes.
//   - confidence: The minimum best-class score.
//
// Returns:
//   - []postprocess.Result: The candidates, in row order. Nil when nothing qualifies.
//   - error: common.ErrInvalidConfiguration when confidence is outside [0, 1].
func Decode(rows []float32, numClasses int, dims model.Dimensions, confidence float32) ([]postprocess.Result, error) {
	if err := validateConfidence(confidence); err != nil {
		return nil, err
	}
	if !wellFormed(rows, numClasses, dims) {
		return nil, nil
	}

	channels := boxColumns + numClasses
	s := newScale(dims)

	var results []postprocess.Result
	for offset := 0; offset < len(rows); offset += channels {
		row := rows[offset : offset+channels]
		class, score := argmax(row[boxColumns:])
		if !(score >= confidence) {
			continue
		}
		if r, ok := candidate(row, class, score, s); ok {
			results = append(results, r)
		}
	}

	return results, nil
}
