// Package models - registry for models.
package models

import (
	"fmt"

	"github.com/nvr-ai/janken/models/model"
	"github.com/nvr-ai/janken/models/yolov8"
)

// NewModel creates a new detection model instance based on the configured model name.
//
// Arguments:
//   - cfg: The model configuration. An empty name selects YOLOv8.
//
// Returns:
//   - model.Model: The model.
//   - error: An error if the name is unsupported or the configuration is invalid.
//
// Example:
//
// ```go
//
//	cfg := model.DefaultConfig()
//	cfg.Path = "models/janken.onnx"
//	m, err := models.NewModel(cfg)
//
// ```
func NewModel(cfg model.Config) (model.Model, error) {
	switch cfg.Name {
	case model.ModelNameYOLOv8, "":
		m, err := yolov8.NewModel(cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported model name: %s", cfg.Name)
	}
}
