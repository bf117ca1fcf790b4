// Package providers - Execution provider selection for ONNX Runtime sessions.
package providers

import (
	"fmt"
	"strings"
)

// Backend represents an ONNX Runtime execution provider.
type Backend string

const (
	// CPUBackend runs the model on the default CPU provider.
	CPUBackend Backend = "cpu"
	// CoreMLBackend uses Apple CoreML for macOS/iOS acceleration.
	CoreMLBackend Backend = "coreml"
	// OpenVINOBackend uses Intel OpenVINO for inference optimization.
	OpenVINOBackend Backend = "openvino"
	// CUDABackend uses NVIDIA CUDA for GPU acceleration.
	CUDABackend Backend = "cuda"
)

// Backends lists every supported backend.
var Backends = []Backend{CPUBackend, CoreMLBackend, OpenVINOBackend, CUDABackend}

// ParseBackend returns the backend named s, case-insensitively.
//
// Arguments:
//   - s: The backend name, e.g. "cpu".
//
// Returns:
//   - Backend: The matching backend.
//   - error: An error if no backend is registered under that name.
func ParseBackend(s string) (Backend, error) {
	name := Backend(strings.ToLower(strings.TrimSpace(s)))
	for _, b := range Backends {
		if b == name {
			return b, nil
		}
	}
	return "", fmt.Errorf("no matching provider backend registered: %q", s)
}

// UnmarshalText accepts any spelling ParseBackend accepts and stores the canonical name.
func (b *Backend) UnmarshalText(text []byte) error {
	parsed, err := ParseBackend(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
