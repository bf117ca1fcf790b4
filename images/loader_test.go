package images

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodePNG renders a solid image of the given size as PNG bytes.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{200, 100, 50, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// withCanvas rewrites the IHDR chunk of a PNG so it declares width x height without carrying
// the pixels.
func withCanvas(data []byte, width, height uint32) []byte {
	out := append([]byte(nil), data...)
	// signature (8) + length (4) + "IHDR" (4), then width and height, then the CRC at 29.
	binary.BigEndian.PutUint32(out[16:20], width)
	binary.BigEndian.PutUint32(out[20:24], height)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

// TestLoad verifies that an image file round-trips through Load with its dimensions intact.
func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hand.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 64, 48), 0o600))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

// TestLoadMissingFile ensures a missing path surfaces as an error.
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

// TestDecodeBytes covers valid and corrupt in-memory payloads.
func TestDecodeBytes(t *testing.T) {
	img, err := DecodeBytes(encodePNG(t, 10, 20))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 20), img.Bounds())

	_, err = DecodeBytes([]byte("not an image"))
	assert.Error(t, err)
}

// TestCheckSize reads the declared canvas without decoding pixels.
func TestCheckSize(t *testing.T) {
	small := encodePNG(t, 4, 4)

	cfg, err := CheckSize(small, 16)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Width)

	_, err = CheckSize(small, 15)
	assert.ErrorIs(t, err, ErrTooLarge)

	huge := withCanvas(small, 50000, 50000)
	cfg, err = CheckSize(huge, 40_000_000)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, 50000, cfg.Height)

	_, err = CheckSize([]byte("not an image"), 40_000_000)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTooLarge)
}
