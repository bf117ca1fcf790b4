// Package postprocess - provides Non-Maximum Suppression for detection results.
package postprocess

import (
	"sort"
	"sync"

	"github.com/nvr-ai/janken/common"
	"github.com/nvr-ai/janken/images"
	"github.com/pkg/errors"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	// IoUThreshold suppresses any box whose overlap with a kept box is at or above it.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
	// ScoreThreshold drops results below it before suppression. Results coming out of a
	// decoder already passed the same floor, so this only matters for other callers.
	ScoreThreshold float32 `json:"score_threshold" yaml:"score_threshold"`
	// ClassAware suppresses only within the same class. One hand occupies one region of the
	// image, so the hand pipeline leaves it off.
	ClassAware bool `json:"class_aware" yaml:"class_aware"`
	// NumWorkers is the number of goroutines computing overlaps. Zero or one runs inline.
	NumWorkers int `json:"num_workers" yaml:"num_workers"`
}

// DefaultNMSConfig returns class-agnostic suppression at IoU 0.5.
func DefaultNMSConfig() *NMSConfig {
	return &NMSConfig{
		IoUThreshold:   0.5,
		ScoreThreshold: 0.5,
	}
}

// NewNMSConfig builds a validated class-agnostic configuration.
//
// Arguments:
//   - iouThreshold: Overlap threshold in [0, 1].
//   - scoreThreshold: Score floor in [0, 1].
//
// Returns:
//   - *NMSConfig: The configuration.
//   - error: common.ErrInvalidConfiguration when a threshold is out of range.
func NewNMSConfig(iouThreshold, scoreThreshold float32) (*NMSConfig, error) {
	config := &NMSConfig{
		IoUThreshold:   iouThreshold,
		ScoreThreshold: scoreThreshold,
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks both thresholds. A nil configuration is invalid.
func (c *NMSConfig) Validate() error {
	if c == nil {
		return errors.Wrap(common.ErrInvalidConfiguration, "nms configuration is missing")
	}
	if err := common.ValidateThreshold("iou_threshold", c.IoUThreshold); err != nil {
		return err
	}
	return common.ValidateThreshold("score_threshold", c.ScoreThreshold)
}

// rank returns the results at or above the score floor, highest score first. Equal scores keep
// their input order, so the earlier result wins a tie. The input slice is not modified.
func rank(detections []Result, floor float32) []Result {
	ranked := make([]Result, 0, len(detections))
	for _, d := range detections {
		if d.Score >= floor {
			ranked = append(ranked, d)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// overlaps reports whether candidate must be suppressed by anchor.
func overlaps(anchor, candidate Result, config *NMSConfig) bool {
	if config.ClassAware && anchor.Class != candidate.Class {
		return false
	}
	return images.CalculateIoU(anchor.Box, candidate.Box) >= config.IoUThreshold
}

// Suppress filters overlapping detections, dispatching to the worker pool when the
// configuration asks for more than one worker.
//
// Arguments:
//   - detections: Candidates in any order.
//   - config: NMS configuration.
//
// Returns:
//   - []Result: The kept detections, highest score first. No two kept detections overlap at
//     or above the IoU threshold (within a class when ClassAware is set).
//   - error: common.ErrInvalidConfiguration when a threshold is out of range.
func Suppress(detections []Result, config *NMSConfig) ([]Result, error) {
	if config == nil {
		config = DefaultNMSConfig()
	}
	if config.NumWorkers > 1 {
		return ApplyNMS(detections, config)
	}
	return ApplyGreedyNMS(detections, config)
}

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression.
//
// Arguments:
//   - detections: Candidates in any order; they are ranked by descending score first.
//   - config: NMS configuration.
//
// Returns:
//   - []Result: Filtered slice of detections. If no detections are provided, returns nil.
//   - error: common.ErrInvalidConfiguration when a threshold is out of range.
func ApplyGreedyNMS(detections []Result, config *NMSConfig) ([]Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ranked := rank(detections, config.ScoreThreshold)
	n := len(ranked)
	if n == 0 {
		return nil, nil
	}

	filtered := make([]Result, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := ranked[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if !used[j] && overlaps(anchor, ranked[j], config) {
				used[j] = true
			}
		}
	}

	return filtered, nil
}

// ApplyNMS is ApplyGreedyNMS with the overlap tests for each kept anchor fanned out over
// config.NumWorkers goroutines. It returns exactly what ApplyGreedyNMS returns.
//
// Arguments:
//   - detections: Candidates in any order.
//   - config: NMS configuration.
//
// Returns:
//   - []Result: Filtered slice of detections. If no detections are provided, returns nil.
//   - error: common.ErrInvalidConfiguration when a threshold is out of range.
func ApplyNMS(detections []Result, config *NMSConfig) ([]Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ranked := rank(detections, config.ScoreThreshold)
	n := len(ranked)
	if n == 0 {
		return nil, nil
	}

	workers := max(config.NumWorkers, 1)
	used := make([]bool, n)
	filtered := make([]Result, 0, n)

	type job struct {
		anchor, start, end int
	}

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		filtered = append(filtered, ranked[i])
		used[i] = true

		// Each worker owns a disjoint range of used[], so no locking is needed.
		remaining := n - (i + 1)
		if remaining == 0 {
			break
		}
		chunk := (remaining + workers - 1) / workers

		jobs := make(chan job, workers)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for task := range jobs {
					for j := task.start; j < task.end; j++ {
						if !used[j] && overlaps(ranked[task.anchor], ranked[j], config) {
							used[j] = true
						}
					}
				}
			}()
		}
		for start := i + 1; start < n; start += chunk {
			jobs <- job{anchor: i, start: start, end: min(start+chunk, n)}
		}
		close(jobs)
		wg.Wait()
	}

	return filtered, nil
}
