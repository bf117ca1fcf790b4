package models

import (
	"testing"

	"github.com/nvr-ai/janken/models/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewModel routes names to constructors and rejects unknown ones.
func TestNewModel(t *testing.T) {
	m, err := NewModel(model.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, model.ModelNameYOLOv8, m.Options().Name)

	cfg := model.DefaultConfig()
	cfg.Name = "rfdetr"
	_, err = NewModel(cfg)
	assert.Error(t, err)

	cfg = model.DefaultConfig()
	cfg.ConfidenceThreshold = 2
	_, err = NewModel(cfg)
	assert.Error(t, err)
}
