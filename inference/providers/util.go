package providers

import (
	"fmt"
	"os"
	"runtime"
)

// SharedLibPathEnv overrides the location of the ONNX Runtime shared library.
const SharedLibPathEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// GetSharedLibPath returns the path to the shared library for the current platform.
//
// Returns:
//   - string: The path to the shared library.
//   - error: An error if the platform has no bundled library and the override is unset.
func GetSharedLibPath() (string, error) {
	if path := os.Getenv(SharedLibPathEnv); path != "" {
		return path, nil
	}

	switch runtime.GOOS {
	case "windows":
		if runtime.GOARCH == "amd64" {
			return "./third_party/onnxruntime.dll", nil
		}
	case "darwin":
		return "./third_party/libonnxruntime.1.21.0.dylib", nil
	case "linux":
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so", nil
		}
		return "./third_party/onnxruntime.so", nil
	}
	return "", fmt.Errorf("no onnxruntime library for %s/%s, set %s",
		runtime.GOOS, runtime.GOARCH, SharedLibPathEnv)
}
