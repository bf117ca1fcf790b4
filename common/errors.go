// Package common - Shared validation helpers for thresholds and configuration.
package common

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// ErrInvalidConfiguration is returned when a caller supplies a configuration value outside of
// its allowed domain. Values are never clamped.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ValidateThreshold checks that a probability-like threshold lies in [0, 1].
//
// Arguments:
//   - name: The name of the threshold, used in the error message.
//   - value: The threshold value.
//
// Returns:
//   - error: ErrInvalidConfiguration wrapped with the offending value, or nil.
func ValidateThreshold(name string, value float32) error {
	if math32.IsNaN(value) || value < 0 || value > 1 {
		return errors.Wrapf(ErrInvalidConfiguration, "%s must be within [0, 1], got %v", name, value)
	}
	return nil
}
