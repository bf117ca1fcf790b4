package yolov8

import (
	"fmt"
	"image"

	"github.com/nfnt/resize"
)

// PrepareInput resizes img to width x height and writes it into dst as planar RGB
// (channel-first) values scaled to [0, 1], the layout YOLOv8 exports expect.
//
// Arguments:
//   - img: The image to prepare.
//   - width: The model input width.
//   - height: The model input height.
//   - dst: The destination tensor data, at least 3*width*height values.
//
// Returns:
//   - error: An error if dst is too small or the image is empty.
func PrepareInput(img image.Image, width, height int, dst []float32) error {
	channelSize := width * height
	if len(dst) < channelSize*3 {
		return fmt.Errorf("destination tensor only holds %d floats, needs %d (make sure it's the right shape!)",
			len(dst), channelSize*3)
	}
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("cannot prepare an empty image")
	}

	red := dst[0:channelSize]
	green := dst[channelSize : channelSize*2]
	blue := dst[channelSize*2 : channelSize*3]

	resized := resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
	bounds := resized.Bounds()

	i := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}
	return nil
}
