package yolov8

import (
	"image"

	"github.com/nvr-ai/janken/models/model"
	"github.com/nvr-ai/janken/models/postprocess"
)

// YOLOv8 is the instance of the YOLOv8 hand detection model.
type YOLOv8 struct {
	options       model.Config
	tensorDecoder bool
}

// NewModel creates a new model from a validated configuration.
//
// Arguments:
//   - cfg: The model configuration.
//
// Returns:
//   - *YOLOv8: The model.
//   - error: model.ErrInvalidConfiguration if a threshold or shape is out of range.
func NewModel(cfg model.Config) (*YOLOv8, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = model.ModelNameYOLOv8
	}
	if cfg.Family == "" {
		cfg.Family = model.ModelFamilyYOLO
	}
	return &YOLOv8{options: cfg, tensorDecoder: cfg.TensorDecoder}, nil
}

// WithTensorDecoder switches decoding between the row loop and the tensor reductions.
func (m *YOLOv8) WithTensorDecoder(enabled bool) *YOLOv8 {
	m.tensorDecoder = enabled
	m.options.TensorDecoder = enabled
	return m
}

// Options returns the options for the YOLOv8 model.
func (m *YOLOv8) Options() model.Config {
	return m.options
}

// PreProcess writes img into dst at the configured input shape.
func (m *YOLOv8) PreProcess(img image.Image, dst []float32) error {
	return PrepareInput(img, m.options.InputShape.X, m.options.InputShape.Y, dst)
}

// PostProcess decodes the raw [1, 4+K, N] model output and suppresses overlapping boxes.
//
// Arguments:
//   - output: The flattened output tensor.
//   - dims: The model input and original image sizes.
//
// Returns:
//   - []postprocess.Result: The final detections, highest score first. Nil for a malformed
//     output.
//   - error: An error if decoding or suppression rejects the configuration.
func (m *YOLOv8) PostProcess(output []float32, dims model.Dimensions) ([]postprocess.Result, error) {
	channels := m.options.Channels()
	if len(output) == 0 || len(output)%channels != 0 {
		return nil, nil
	}

	rows, err := Transpose(output, channels, len(output)/channels)
	if err != nil {
		return nil, err
	}
	return m.PostProcessRows(rows, dims)
}

// PostProcessRows decodes an output that is already laid out as [N, 4+K] rows and suppresses
// overlapping boxes.
func (m *YOLOv8) PostProcessRows(rows []float32, dims model.Dimensions) ([]postprocess.Result, error) {
	decode := Decode
	if m.tensorDecoder {
		decode = DecodeTensor
	}
	candidates, err := decode(rows, m.options.NumClasses, dims, m.options.ConfidenceThreshold)
	if err != nil {
		return nil, err
	}
	return postprocess.Suppress(candidates, m.options.NMS)
}
