package inference

import (
	"context"
	"errors"
	"image"

	"github.com/nvr-ai/janken/inference/providers"
	"github.com/nvr-ai/janken/models"
	"github.com/nvr-ai/janken/models/model"
	"github.com/nvr-ai/janken/models/postprocess"
	"github.com/nvr-ai/janken/profiler"
)

// Engine defines the interface for hand detection engines.
type Engine interface {
	Detect(ctx context.Context, img image.Image) ([]postprocess.Result, error)
	Close() error
}

var _ Engine = (*Detector)(nil)

// EngineBuilder builds a Detector step by step, keeping the first error.
type EngineBuilder struct {
	provider *providers.Config
	model    model.Model
	runner   Runner
	profiler *profiler.Profiler
	err      error
}

// NewEngineBuilder creates a new engine builder.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func NewEngineBuilder() *EngineBuilder {
	return &EngineBuilder{}
}

// WithProvider sets the execution provider for the session.
//
// Arguments:
//   - cfg: The provider configuration.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithProvider(cfg providers.Config) *EngineBuilder {
	if b.HasError() {
		return b
	}
	if err := cfg.Validate(); err != nil {
		b.err = err
		return b
	}
	b.provider = &cfg
	return b
}

// WithModel sets the model for the engine.
//
// Arguments:
//   - cfg: The model configuration.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithModel(cfg model.Config) *EngineBuilder {
	if b.HasError() {
		return b
	}
	m, err := models.NewModel(cfg)
	if err != nil {
		b.err = err
		return b
	}
	b.model = m
	return b
}

// WithRunner uses an already loaded runner instead of creating an ONNX Runtime session.
//
// Arguments:
//   - runner: The runner.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithRunner(runner Runner) *EngineBuilder {
	if b.HasError() {
		return b
	}
	b.runner = runner
	return b
}

// WithProfiler records stage timings of the built detector in p.
//
// Arguments:
//   - p: The profiler.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithProfiler(p *profiler.Profiler) *EngineBuilder {
	b.profiler = p
	return b
}

// HasError checks if the engine builder has errors.
//
// Returns:
//   - bool: True if there are errors, false otherwise.
func (b *EngineBuilder) HasError() bool {
	return b.err != nil
}

// Build creates the session if no runner was given, wraps it in a Detector and warms it up.
//
// Arguments:
//   - ctx: Stops the warm-up early.
//
// Returns:
//   - *Detector: The detector.
//   - error: The first error of the build.
func (b *EngineBuilder) Build(ctx context.Context) (*Detector, error) {
	if b.HasError() {
		return nil, b.err
	}
	if b.model == nil {
		return nil, errors.New("model not configured")
	}

	provider := providers.DefaultConfig()
	if b.provider != nil {
		provider = *b.provider
	}

	runner := b.runner
	if runner == nil {
		session, err := NewSession(b.model.Options(), provider)
		if err != nil {
			return nil, err
		}
		runner = session
	}

	detector, err := NewDetector(runner, b.model)
	if err != nil {
		runner.Close()
		return nil, err
	}
	detector.WithProfiler(b.profiler)

	if err := detector.Warmup(ctx, provider.Warmup); err != nil {
		detector.Close()
		return nil, err
	}
	return detector, nil
}
