// Package inference - Model execution on ONNX Runtime.
package inference

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/nvr-ai/janken/inference/providers"
	"github.com/nvr-ai/janken/models/model"
	ort "github.com/yalue/onnxruntime_go"
)

// Runner executes a model over preallocated input and output buffers.
type Runner interface {
	// Input returns the buffer the next Run reads, laid out as [1, 3, H, W].
	Input() []float32
	// Output returns the buffer the last Run wrote, laid out as [1, 4+K, N].
	Output() []float32
	// Run executes the model once.
	Run() error
	// Close releases the native resources.
	Close() error
}

// environmentMu guards the process-wide ONNX Runtime environment.
var environmentMu sync.Mutex

// initEnvironment loads the shared library and initializes the runtime once per process.
func initEnvironment() error {
	environmentMu.Lock()
	defer environmentMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}

	libPath, err := providers.GetSharedLibPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(libPath); os.IsNotExist(err) {
		return fmt.Errorf("ONNX Runtime library not found at %s: %w", libPath, err)
	}

	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("error initializing ORT environment: %w", err)
	}
	log.Printf("✅ ONNX Runtime initialized from %s", libPath)
	return nil
}

// Session represents a model session from the onnxruntime with preallocated tensors.
type Session struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// NewSession creates a new ONNX Runtime session for the model.
//
// Order of operations:
//  1. Environment setup: loads the native library once per process.
//  2. Tensor allocation: [1, 3, H, W] input and [1, 4+K, N] output buffers.
//  3. Session options: threading, optimization level and execution provider.
//  4. Session creation: loads the model and binds the tensors.
//
// Arguments:
//   - cfg: The model configuration.
//   - provider: The execution provider configuration.
//
// Returns:
//   - *Session: The session, to be closed by the caller.
//   - error: An error if the session creation fails.
func NewSession(cfg model.Config, provider providers.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("model path is required")
	}
	if err := initEnvironment(); err != nil {
		return nil, err
	}

	input, err := ort.NewEmptyTensor[float32](
		ort.NewShape(1, 3, int64(cfg.InputShape.Y), int64(cfg.InputShape.X)),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](
		ort.NewShape(1, int64(cfg.Channels()), int64(cfg.Anchors())),
	)
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("error creating output tensor: %w", err)
	}

	options, err := provider.NewSessionOptions()
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, err
	}
	defer options.Destroy()

	session, err := ort.NewAdvancedSession(
		cfg.Path,
		cfg.Inputs,
		cfg.Outputs,
		[]ort.Value{input},
		[]ort.Value{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("error creating ORT session: %w", err)
	}

	log.Printf("✅ ONNX session created for model %s on %s", cfg.Path, provider.Backend)
	return &Session{session: session, input: input, output: output}, nil
}

// Input returns the input tensor data.
func (s *Session) Input() []float32 {
	return s.input.GetData()
}

// Output returns the output tensor data.
func (s *Session) Output() []float32 {
	return s.output.GetData()
}

// Run executes the model.
func (s *Session) Run() error {
	if s.session == nil {
		return ErrNotLoaded
	}
	return s.session.Run()
}

// Close releases the resources associated with the Session.
func (s *Session) Close() error {
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.session != nil {
		err := s.session.Destroy()
		s.session = nil
		if err != nil {
			return fmt.Errorf("error destroying ORT session: %w", err)
		}
	}
	return nil
}
