package providers

import "fmt"

// OpenVINOOptions contains arguments for the OpenVINO provider.
// See: https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html
type OpenVINOOptions struct {
	// The device to run on, e.g. "0".
	DeviceID string `json:"deviceID"             yaml:"deviceID"`
	// The hardware target, e.g. "CPU" or "GPU".
	DeviceType string `json:"deviceType"           yaml:"deviceType"`
	// The inference precision, e.g. "FP32".
	Precision string `json:"precision"            yaml:"precision"`
	// The number of threads; 0 leaves the choice to OpenVINO.
	NumOfThreads int `json:"numOfThreads"         yaml:"numOfThreads"`
	// Compile the model for its static input shape.
	DisableDynamicShapes bool `json:"disableDynamicShapes" yaml:"disableDynamicShapes"`
}

// DefaultOpenVINOOptions returns the options used when OpenVINO is selected without any.
func DefaultOpenVINOOptions() OpenVINOOptions {
	return OpenVINOOptions{
		DeviceID:     "0",
		DeviceType:   "CPU",
		Precision:    "FP32",
		NumOfThreads: 4,
	}
}

// toMap returns the provider options in the key/value form ONNX Runtime expects.
func (o OpenVINOOptions) toMap() map[string]string {
	return map[string]string{
		"device_id":              o.DeviceID,
		"device_type":            o.DeviceType,
		"precision":              o.Precision,
		"num_of_threads":         fmt.Sprintf("%d", o.NumOfThreads),
		"disable_dynamic_shapes": fmt.Sprintf("%t", o.DisableDynamicShapes),
	}
}
