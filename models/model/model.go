// Package model - Model configuration and the contract every detection model implements.
package model

import (
	"image"

	"github.com/nvr-ai/janken/common"
	"github.com/nvr-ai/janken/models/postprocess"
	"github.com/pkg/errors"
)

// ErrInvalidConfiguration is returned when a threshold or shape is out of range.
var ErrInvalidConfiguration = common.ErrInvalidConfiguration

// Family is the family of models.
type Family string

const (
	// ModelFamilyYOLO is the YOLO model family.
	ModelFamilyYOLO Family = "yolo"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameYOLOv8 is the name of the anchor-free YOLOv8 detection head.
	ModelNameYOLOv8 Name = "yolov8"
)

// Dimensions carries the two coordinate spaces a decoder converts between.
type Dimensions struct {
	// InputWidth and InputHeight are the model input size the boxes are expressed in.
	InputWidth, InputHeight int
	// ImageWidth and ImageHeight are the original image size the boxes are scaled to.
	ImageWidth, ImageHeight int
}

// Valid reports whether every dimension is positive.
func (d Dimensions) Valid() bool {
	return d.InputWidth > 0 && d.InputHeight > 0 && d.ImageWidth > 0 && d.ImageHeight > 0
}

// Config is a model with a family and path for loading.
type Config struct {
	Name                Name                   `json:"name" yaml:"name"`
	Family              Family                 `json:"family" yaml:"family"`
	Path                string                 `json:"path" yaml:"path"`
	InputShape          image.Point            `json:"input_shape" yaml:"input_shape"`
	NumClasses          int                    `json:"num_classes" yaml:"num_classes"`
	ConfidenceThreshold float32                `json:"confidence_threshold" yaml:"confidence_threshold"`
	NMS                 *postprocess.NMSConfig `json:"nms" yaml:"nms"`
	Inputs              []string               `json:"inputs" yaml:"inputs"`
	Outputs             []string               `json:"outputs" yaml:"outputs"`
	// TensorDecoder decodes with tensor reductions instead of the row loop.
	TensorDecoder bool `json:"tensor_decoder" yaml:"tensor_decoder"`
}

// DefaultConfig returns the configuration of the hand detector: a 640x640 YOLOv8 export with
// three classes and 0.5 confidence and IoU thresholds.
func DefaultConfig() Config {
	return Config{
		Name:                ModelNameYOLOv8,
		Family:              ModelFamilyYOLO,
		InputShape:          image.Point{X: 640, Y: 640},
		NumClasses:          3,
		ConfidenceThreshold: 0.5,
		NMS:                 postprocess.DefaultNMSConfig(),
		Inputs:              []string{"images"},
		Outputs:             []string{"output0"},
	}
}

// Validate checks thresholds and shapes. Out of range values are reported, never clamped.
//
// Returns:
//   - error: ErrInvalidConfiguration wrapped with the offending field, or nil.
func (c Config) Validate() error {
	if err := common.ValidateThreshold("confidence_threshold", c.ConfidenceThreshold); err != nil {
		return err
	}
	if c.NMS == nil {
		return errors.Wrap(ErrInvalidConfiguration, "nms configuration is required")
	}
	if err := c.NMS.Validate(); err != nil {
		return err
	}
	if c.InputShape.X <= 0 || c.InputShape.Y <= 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "input_shape must be positive, got %v", c.InputShape)
	}
	if c.NumClasses < 1 {
		return errors.Wrapf(ErrInvalidConfiguration, "num_classes must be at least 1, got %d", c.NumClasses)
	}
	return nil
}

// Anchors returns the number of candidate rows an anchor-free YOLO head emits for the input
// shape: one per cell of the stride 8, 16 and 32 feature maps (8400 for 640x640).
func (c Config) Anchors() int {
	n := 0
	for _, stride := range []int{8, 16, 32} {
		n += (c.InputShape.X / stride) * (c.InputShape.Y / stride)
	}
	return n
}

// Channels returns the width of one candidate row: four box values plus one score per class.
func (c Config) Channels() int {
	return 4 + c.NumClasses
}

// Model is a detection model that knows how to fill its input tensor and decode its output.
type Model interface {
	// Options returns the configuration the model was built with.
	Options() Config
	// PreProcess writes img into dst in the model's input layout.
	PreProcess(img image.Image, dst []float32) error
	// PostProcess decodes a raw output tensor into suppressed detections.
	PostProcess(output []float32, dims Dimensions) ([]postprocess.Result, error)
}
