package postprocess

import (
	"math/rand"
	"testing"

	"github.com/nvr-ai/janken/common"
	"github.com/nvr-ai/janken/images"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomResults builds a reproducible cloud of boxes that overlap often.
func randomResults(seed int64, n int) []Result {
	rng := rand.New(rand.NewSource(seed))
	results := make([]Result, n)
	for i := range results {
		x, y := rng.Intn(200), rng.Intn(200)
		w, h := 20+rng.Intn(60), 20+rng.Intn(60)
		results[i] = Result{
			Box:   images.RectFromLTWH(x, y, w, h),
			Score: 0.5 + rng.Float32()*0.5,
			Class: rng.Intn(3),
		}
	}
	return results
}

// greedy runs ApplyGreedyNMS and fails the test on a configuration error.
func greedy(t *testing.T, detections []Result, config *NMSConfig) []Result {
	t.Helper()
	kept, err := ApplyGreedyNMS(detections, config)
	require.NoError(t, err)
	return kept
}

// TestApplyGreedyNMSKeepsHighestScore covers the overlapping pair from the end-to-end round:
// two rock boxes with IoU 0.9 where only the 0.9 score may survive.
func TestApplyGreedyNMSKeepsHighestScore(t *testing.T) {
	low := Result{Box: images.RectFromLTWH(0, 0, 100, 90), Score: 0.6, Class: 0}
	high := Result{Box: images.RectFromLTWH(0, 0, 100, 100), Score: 0.9, Class: 0}
	require.InDelta(t, 0.9, images.CalculateIoU(low.Box, high.Box), 1e-6)

	config := DefaultNMSConfig()
	kept := greedy(t, []Result{low, high}, config)

	require.Len(t, kept, 1)
	assert.Equal(t, high, kept[0])
}

// TestApplyGreedyNMSClassAgnostic suppresses a paper box sitting on top of a rock box.
func TestApplyGreedyNMSClassAgnostic(t *testing.T) {
	rock := Result{Box: images.RectFromLTWH(10, 10, 100, 100), Score: 0.8, Class: 0}
	paper := Result{Box: images.RectFromLTWH(12, 12, 100, 100), Score: 0.7, Class: 1}

	kept := greedy(t, []Result{rock, paper}, DefaultNMSConfig())
	assert.Equal(t, []Result{rock}, kept)

	aware := DefaultNMSConfig()
	aware.ClassAware = true
	assert.Len(t, greedy(t, []Result{rock, paper}, aware), 2)
}

// TestApplyGreedyNMSThresholdIsInclusive suppresses a box whose IoU equals the threshold.
func TestApplyGreedyNMSThresholdIsInclusive(t *testing.T) {
	a := Result{Box: images.Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}, Score: 0.9}
	b := Result{Box: images.Rect{X1: 0, Y1: 0, X2: 100, Y2: 50}, Score: 0.8}
	require.InDelta(t, 0.5, images.CalculateIoU(a.Box, b.Box), 1e-6)

	assert.Len(t, greedy(t, []Result{a, b}, DefaultNMSConfig()), 1)
}

// TestApplyGreedyNMSTieBreak keeps exactly one of two identical-score overlapping boxes.
func TestApplyGreedyNMSTieBreak(t *testing.T) {
	a := Result{Box: images.RectFromLTWH(0, 0, 50, 50), Score: 0.7, Class: 0}
	b := Result{Box: images.RectFromLTWH(1, 1, 50, 50), Score: 0.7, Class: 2}

	kept := greedy(t, []Result{a, b}, DefaultNMSConfig())
	require.Len(t, kept, 1)
	assert.Contains(t, []Result{a, b}, kept[0])

	// Stable across calls.
	assert.Equal(t, kept, greedy(t, []Result{a, b}, DefaultNMSConfig()))
}

// TestApplyGreedyNMSInvariant checks pairwise IoU of kept boxes over random inputs.
func TestApplyGreedyNMSInvariant(t *testing.T) {
	for _, threshold := range []float32{0.1, 0.3, 0.5, 0.7} {
		config := &NMSConfig{IoUThreshold: threshold}
		kept := greedy(t, randomResults(int64(threshold*100), 300), config)
		require.NotEmpty(t, kept)

		for i := range kept {
			for j := i + 1; j < len(kept); j++ {
				assert.Less(t, images.CalculateIoU(kept[i].Box, kept[j].Box), threshold)
			}
			if i > 0 {
				assert.GreaterOrEqual(t, kept[i-1].Score, kept[i].Score)
			}
		}
	}
}

// TestApplyGreedyNMSIdempotent re-runs suppression on its own output.
func TestApplyGreedyNMSIdempotent(t *testing.T) {
	config := DefaultNMSConfig()
	once := greedy(t, randomResults(3, 200), config)
	twice := greedy(t, once, config)
	assert.Equal(t, once, twice)
}

// TestApplyGreedyNMSScoreFloor drops results under the optional second confidence pass.
func TestApplyGreedyNMSScoreFloor(t *testing.T) {
	results := []Result{
		{Box: images.RectFromLTWH(0, 0, 10, 10), Score: 0.4},
		{Box: images.RectFromLTWH(100, 100, 10, 10), Score: 0.6},
	}
	kept := greedy(t, results, DefaultNMSConfig())
	require.Len(t, kept, 1)
	assert.Equal(t, float32(0.6), kept[0].Score)
}

// TestApplyGreedyNMSDoesNotMutateInput leaves the caller's slice order untouched.
func TestApplyGreedyNMSDoesNotMutateInput(t *testing.T) {
	input := randomResults(11, 50)
	snapshot := append([]Result(nil), input...)
	greedy(t, input, DefaultNMSConfig())
	assert.Equal(t, snapshot, input)
}

// TestApplyGreedyNMSEmpty returns nil for empty input.
func TestApplyGreedyNMSEmpty(t *testing.T) {
	assert.Nil(t, greedy(t, nil, DefaultNMSConfig()))

	kept, err := ApplyNMS([]Result{}, &NMSConfig{IoUThreshold: 0.5, NumWorkers: 4})
	require.NoError(t, err)
	assert.Nil(t, kept)
}

// TestApplyNMSMatchesGreedy checks the worker pool against the sequential pass.
func TestApplyNMSMatchesGreedy(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		input := randomResults(seed, 250)
		for _, workers := range []int{2, 3, 8} {
			config := &NMSConfig{IoUThreshold: 0.4, NumWorkers: workers}
			sequential := greedy(t, input, &NMSConfig{IoUThreshold: 0.4})
			parallel, err := ApplyNMS(input, config)
			require.NoError(t, err)
			assert.Equal(t, sequential, parallel, "seed %d workers %d", seed, workers)

			suppressed, err := Suppress(input, config)
			require.NoError(t, err)
			assert.Equal(t, parallel, suppressed)
		}
	}
}

// TestNewNMSConfig rejects thresholds outside [0, 1].
func TestNewNMSConfig(t *testing.T) {
	config, err := NewNMSConfig(0.45, 0.25)
	require.NoError(t, err)
	assert.Equal(t, float32(0.45), config.IoUThreshold)
	assert.False(t, config.ClassAware)

	_, err = NewNMSConfig(1.5, 0.5)
	assert.Equal(t, common.ErrInvalidConfiguration, errors.Cause(err))

	_, err = NewNMSConfig(0.5, -0.1)
	assert.Equal(t, common.ErrInvalidConfiguration, errors.Cause(err))
}

// TestSuppressRejectsInvalidConfig reports out of range thresholds instead of running with them.
func TestSuppressRejectsInvalidConfig(t *testing.T) {
	box := Result{Box: images.RectFromLTWH(0, 0, 50, 50), Score: 0.9}
	identical := []Result{box, box}

	tests := []struct {
		name   string
		config *NMSConfig
	}{
		{name: "iou above one", config: &NMSConfig{IoUThreshold: 1.5}},
		{name: "negative iou", config: &NMSConfig{IoUThreshold: -0.1}},
		{name: "score above one", config: &NMSConfig{IoUThreshold: 0.5, ScoreThreshold: 2}},
		{name: "workers with bad iou", config: &NMSConfig{IoUThreshold: 1.5, NumWorkers: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, err := Suppress(identical, tt.config)
			assert.Nil(t, kept)
			assert.Equal(t, common.ErrInvalidConfiguration, errors.Cause(err))

			_, err = ApplyGreedyNMS(identical, tt.config)
			assert.Equal(t, common.ErrInvalidConfiguration, errors.Cause(err))

			_, err = ApplyNMS(identical, tt.config)
			assert.Equal(t, common.ErrInvalidConfiguration, errors.Cause(err))
		})
	}

	_, err := ApplyGreedyNMS(identical, nil)
	assert.Equal(t, common.ErrInvalidConfiguration, errors.Cause(err))
}

// TestSuppressNilConfigUsesDefaults collapses identical boxes with the default configuration.
func TestSuppressNilConfigUsesDefaults(t *testing.T) {
	box := Result{Box: images.RectFromLTWH(0, 0, 50, 50), Score: 0.9}
	kept, err := Suppress([]Result{box, box}, nil)
	require.NoError(t, err)
	assert.Equal(t, []Result{box}, kept)
}
