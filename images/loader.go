package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// ErrTooLarge is returned when an image declares a larger canvas than the caller accepts.
var ErrTooLarge = errors.New("image too large")

// CheckSize reads only the header of an encoded image and rejects canvases larger than
// maxPixels, before any pixel buffer is allocated.
//
// Arguments:
//   - data: The encoded image.
//   - maxPixels: The largest accepted width*height.
//
// Returns:
//   - image.Config: The header of the image.
//   - error: ErrTooLarge wrapped with the declared size, or an error if the header is unreadable.
func CheckSize(data []byte, maxPixels int64) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, fmt.Errorf("failed to read image header: %w", err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
		return cfg, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	return cfg, nil
}

// Load reads and decodes an image file, applying the EXIF orientation so that photos taken
// with a rotated phone come out upright before they reach the detector.
//
// Arguments:
//   - path: The path to a JPEG, PNG, GIF, BMP or TIFF file.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: An error if the file cannot be opened or decoded.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	return img, nil
}

// Decode decodes an image from a reader with the same orientation handling as Load.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// DecodeBytes is a convenience wrapper around Decode for in-memory files.
func DecodeBytes(data []byte) (image.Image, error) {
	return Decode(bytes.NewReader(data))
}
