package providers

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// Config represents the session-level configuration of the ONNX Runtime.
type Config struct {
	// Backend specifies the execution provider to use.
	Backend Backend `json:"backend" yaml:"backend"`

	// IntraOpNumThreads parallelizes execution within graph nodes. 0 uses the runtime default.
	IntraOpNumThreads int `json:"intra_op_num_threads" yaml:"intra_op_num_threads"`

	// InterOpNumThreads parallelizes execution across graph nodes. 0 uses the runtime default.
	InterOpNumThreads int `json:"inter_op_num_threads" yaml:"inter_op_num_threads"`

	// GraphOptimizationLevel is the optimization applied when the graph is loaded.
	GraphOptimizationLevel ort.GraphOptimizationLevel `json:"graph_optimization_level" yaml:"graph_optimization_level"`

	// CoreMLFlags are passed to the CoreML provider as-is.
	CoreMLFlags uint32 `json:"coreml_flags,omitempty" yaml:"coreml_flags,omitempty"`

	// OpenVINO options, DefaultOpenVINOOptions when nil.
	OpenVINO *OpenVINOOptions `json:"openvino,omitempty" yaml:"openvino,omitempty"`

	// CUDA options, zero values when nil.
	CUDA *CUDAOptions `json:"cuda,omitempty" yaml:"cuda,omitempty"`

	// Warmup is the number of inferences run on a random image right after the session is created.
	Warmup int `json:"warmup" yaml:"warmup"`
}

// DefaultConfig returns a CPU configuration with one warm-up run.
//
// Returns:
//   - Config: The default configuration.
func DefaultConfig() Config {
	return Config{
		Backend:                CPUBackend,
		IntraOpNumThreads:      4,
		InterOpNumThreads:      2,
		GraphOptimizationLevel: ort.GraphOptimizationLevelEnableExtended,
		Warmup:                 1,
	}
}

// Validate checks the configuration before any native resource is allocated.
//
// Returns:
//   - error: An error if the backend is unknown or a count is negative.
func (c Config) Validate() error {
	if _, err := ParseBackend(string(c.Backend)); err != nil {
		return err
	}
	if c.IntraOpNumThreads < 0 {
		return fmt.Errorf("intra_op_num_threads must be >= 0, got %d", c.IntraOpNumThreads)
	}
	if c.InterOpNumThreads < 0 {
		return fmt.Errorf("inter_op_num_threads must be >= 0, got %d", c.InterOpNumThreads)
	}
	if c.Warmup < 0 {
		return fmt.Errorf("warmup must be >= 0, got %d", c.Warmup)
	}
	return nil
}

// NewSessionOptions creates ONNX Runtime session options with threading, graph optimization and
// the execution provider applied. The caller must Destroy the result.
//
// Returns:
//   - *ort.SessionOptions: The session options.
//   - error: An error if the options cannot be created or the provider cannot be enabled.
func (c Config) NewSessionOptions() (*ort.SessionOptions, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("error creating ORT session options: %w", err)
	}

	if err := c.apply(options); err != nil {
		options.Destroy()
		return nil, err
	}
	return options, nil
}

func (c Config) apply(options *ort.SessionOptions) error {
	if err := options.SetIntraOpNumThreads(c.IntraOpNumThreads); err != nil {
		return fmt.Errorf("error setting intra-op threads: %w", err)
	}
	if err := options.SetInterOpNumThreads(c.InterOpNumThreads); err != nil {
		return fmt.Errorf("error setting inter-op threads: %w", err)
	}
	if err := options.SetGraphOptimizationLevel(c.GraphOptimizationLevel); err != nil {
		return fmt.Errorf("error setting graph optimization level: %w", err)
	}

	backend, err := ParseBackend(string(c.Backend))
	if err != nil {
		return err
	}

	switch backend {
	case CoreMLBackend:
		if err := options.AppendExecutionProviderCoreML(c.CoreMLFlags); err != nil {
			return fmt.Errorf("error enabling CoreML: %w", err)
		}
	case OpenVINOBackend:
		if err := options.AppendExecutionProviderOpenVINO(c.openVINO().toMap()); err != nil {
			return fmt.Errorf("error enabling OpenVINO: %w", err)
		}
	case CUDABackend:
		cuda, err := c.cuda().ToNativeProviderOptions()
		if err != nil {
			return err
		}
		defer cuda.Destroy()
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			return fmt.Errorf("error enabling CUDA: %w", err)
		}
	}
	return nil
}

func (c Config) openVINO() OpenVINOOptions {
	if c.OpenVINO == nil {
		return DefaultOpenVINOOptions()
	}
	return *c.OpenVINO
}

func (c Config) cuda() CUDAOptions {
	if c.CUDA == nil {
		return CUDAOptions{}
	}
	return *c.CUDA
}
