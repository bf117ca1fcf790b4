package inference

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/nvr-ai/janken/models/model"
	"github.com/nvr-ai/janken/models/postprocess"
	"github.com/nvr-ai/janken/profiler"
)

// ErrNotLoaded is returned when a detector or session is used after Close.
var ErrNotLoaded = errors.New("model not loaded")

// Detector turns images into hand detections. A Runner is not safe for concurrent use, so
// Detect calls are serialized.
type Detector struct {
	mu       sync.Mutex
	runner   Runner
	model    model.Model
	profiler *profiler.Profiler
}

// NewDetector creates a detector from a loaded runner and the model describing its tensors.
//
// Arguments:
//   - runner: The model execution backend.
//   - m: The model that prepares inputs and decodes outputs.
//
// Returns:
//   - *Detector: The detector.
//   - error: An error if the runner buffers do not match the model shapes.
func NewDetector(runner Runner, m model.Model) (*Detector, error) {
	if runner == nil || m == nil {
		return nil, ErrNotLoaded
	}

	opts := m.Options()
	if want := 3 * opts.InputShape.X * opts.InputShape.Y; len(runner.Input()) < want {
		return nil, fmt.Errorf("input buffer holds %d floats, needs %d", len(runner.Input()), want)
	}
	return &Detector{runner: runner, model: m}, nil
}

// WithProfiler records the duration of each stage of Detect in p.
func (d *Detector) WithProfiler(p *profiler.Profiler) *Detector {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiler = p
	return d
}

// Model returns the model the detector decodes with.
func (d *Detector) Model() model.Model {
	return d.model
}

// Detect runs inference on the image.
//
// Arguments:
//   - ctx: Cancels the call before inference starts.
//   - img: The image to detect hands in.
//
// Returns:
//   - []postprocess.Result: The detections in original image coordinates, highest score first.
//   - error: An error if the image cannot be prepared or the model fails to run.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]postprocess.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.runner == nil {
		return nil, ErrNotLoaded
	}

	done := d.profiler.StartOperation("preprocess")
	err := d.model.PreProcess(img, d.runner.Input())
	done()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare input: %w", err)
	}

	done = d.profiler.StartOperation("inference")
	err = d.runner.Run()
	done()
	if err != nil {
		return nil, fmt.Errorf("failed to run inference: %w", err)
	}

	opts := d.model.Options()
	dims := model.Dimensions{
		InputWidth:  opts.InputShape.X,
		InputHeight: opts.InputShape.Y,
		ImageWidth:  img.Bounds().Dx(),
		ImageHeight: img.Bounds().Dy(),
	}
	done = d.profiler.StartOperation("postprocess")
	detections, err := d.model.PostProcess(d.runner.Output(), dims)
	done()
	if err != nil {
		return nil, fmt.Errorf("failed to decode output: %w", err)
	}

	d.profiler.Add("frames", 1)
	d.profiler.Add("detections", int64(len(detections)))
	return detections, nil
}

// Warmup runs inference on random images so the first real request does not pay for the
// runtime's lazy initialization.
//
// Arguments:
//   - ctx: Stops the warm-up early.
//   - iterations: The number of runs.
//
// Returns:
//   - error: The first error encountered.
func (d *Detector) Warmup(ctx context.Context, iterations int) error {
	if iterations <= 0 {
		return nil
	}

	opts := d.model.Options()
	img := randomImage(opts.InputShape.X, opts.InputShape.Y, rand.New(rand.NewSource(time.Now().UnixNano())))

	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, err := d.Detect(ctx, img); err != nil {
			return fmt.Errorf("warmup run %d failed: %w", i+1, err)
		}
	}
	log.Printf("🔥 Warmup completed: %d runs in %v", iterations, time.Since(start))
	return nil
}

// Close releases the runner.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.runner == nil {
		return nil
	}
	err := d.runner.Close()
	d.runner = nil
	return err
}

func randomImage(width, height int, rng *rand.Rand) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}
