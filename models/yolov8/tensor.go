package yolov8

import (
	"fmt"

	"github.com/nvr-ai/janken/models/model"
	"github.com/nvr-ai/janken/models/postprocess"
	"gorgonia.org/tensor"
)

// Transpose converts the model's [4+K, N] output layout into the [N, 4+K] row layout the
// decoders consume. The input is not modified.
//
// Arguments:
//   - output: The flattened model output, batch dimension already dropped.
//   - channels: The number of values per candidate (4+K).
//   - anchors: The number of candidates (N).
//
// Returns:
//   - []float32: The transposed data.
//   - error: An error if the sizes disagree.
func Transpose(output []float32, channels, anchors int) ([]float32, error) {
	if channels <= 0 || anchors <= 0 || len(output) != channels*anchors {
		return nil, fmt.Errorf("output holds %d values, expected %d channels x %d anchors",
			len(output), channels, anchors)
	}

	backing := make([]float32, len(output))
	copy(backing, output)

	t := tensor.New(tensor.WithShape(channels, anchors), tensor.WithBacking(backing))
	if err := t.T(); err != nil {
		return nil, fmt.Errorf("failed to transpose output: %w", err)
	}
	if err := t.Transpose(); err != nil {
		return nil, fmt.Errorf("failed to materialize transposed output: %w", err)
	}

	return t.Float32s(), nil
}

// DecodeTensor is the bulk-array counterpart of Decode: the per-row maximum score and its class
// are computed for all rows at once with tensor reductions, then the same filters are applied.
// It returns exactly what Decode returns for the same input.
//
// Arguments:
//   - rows: The [N, 4+numClasses] tensor, flattened row by row.
//   - numClasses: The number of score columns per row.
//   - dims: The model input and original image sizes.
//   - confidence: The minimum best-class score.
//
// Returns:
//   - []postprocess.Result: The candidates, in row order. Nil when nothing qualifies.
//   - error: common.ErrInvalidConfiguration when confidence is outside [0, 1], or the
//     failure of a tensor reduction.
func DecodeTensor(rows []float32, numClasses int, dims model.Dimensions, confidence float32) ([]postprocess.Result, error) {
	if err := validateConfidence(confidence); err != nil {
		return nil, err
	}
	if !wellFormed(rows, numClasses, dims) {
		return nil, nil
	}

	channels := boxColumns + numClasses
	n := len(rows) / channels

	classes, scores, err := bestClasses(rows, n, channels)
	if err != nil {
		return nil, fmt.Errorf("failed to reduce scores: %w", err)
	}

	s := newScale(dims)

	var results []postprocess.Result
	for i := 0; i < n; i++ {
		if !(scores[i] >= confidence) {
			continue
		}
		row := rows[i*channels : (i+1)*channels]
		if r, ok := candidate(row, classes[i], scores[i], s); ok {
			results = append(results, r)
		}
	}

	return results, nil
}

// bestClasses returns the argmax and max of the score columns of every row.
func bestClasses(rows []float32, n, channels int) ([]int, []float32, error) {
	t := tensor.New(tensor.WithShape(n, channels), tensor.WithBacking(rows))

	view, err := t.Slice(nil, tensor.S(boxColumns, channels))
	if err != nil {
		return nil, nil, err
	}
	scores, ok := view.Materialize().(*tensor.Dense)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected tensor type %T", view.Materialize())
	}
	if err := scores.Reshape(n, channels-boxColumns); err != nil {
		return nil, nil, err
	}

	best, err := scores.Argmax(1)
	if err != nil {
		return nil, nil, err
	}
	maxes, err := scores.Max(1)
	if err != nil {
		return nil, nil, err
	}

	classes := best.Ints()
	values := maxes.Float32s()
	if len(classes) != n || len(values) != n {
		return nil, nil, fmt.Errorf("reduction returned %d/%d values for %d rows", len(classes), len(values), n)
	}

	return classes, values, nil
}
