// Package overlay - Draws detections and round results onto OpenCV frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/nvr-ai/janken/images/annotate"
	"github.com/nvr-ai/janken/models/postprocess"
	"gocv.io/x/gocv"
)

const (
	boxThickness = 2
	fontFace     = gocv.FontHersheySimplex
	fontScale    = 0.5
)

var textColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Draw renders every detection as a colored box with a filled label.
//
// Arguments:
//   - img: The frame to draw on, modified in place.
//   - detections: The detections in frame coordinates.
//   - palette: The color per hand.
func Draw(img *gocv.Mat, detections []postprocess.Result, palette annotate.Palette) {
	for _, d := range detections {
		c := palette.Color(d.Class)
		gocv.Rectangle(img, d.Box.ToRectangle(), c, boxThickness)

		label := annotate.Label(d)
		size := gocv.GetTextSize(label, fontFace, fontScale, 1)
		place := annotate.Place(d.Box, size)

		gocv.Rectangle(img, place.Background, c, int(gocv.Filled))
		gocv.PutTextWithParams(img, label, place.Origin, fontFace, fontScale, textColor, 1, gocv.LineAA, false)
	}
}

// Caption writes a line of text in the top-left corner, e.g. the round verdict.
func Caption(img *gocv.Mat, text string) {
	gocv.PutText(img, text, image.Pt(10, 30), gocv.FontHersheyPlain, 1.2, textColor, 2)
}

// Render converts img to a BGR frame and draws the detections on it. The caller must Close
// the result.
//
// Arguments:
//   - img: The source image.
//   - detections: The detections in image coordinates.
//   - palette: The color per hand.
//
// Returns:
//   - gocv.Mat: The annotated frame.
//   - error: An error if the image cannot be converted.
func Render(img image.Image, detections []postprocess.Result, palette annotate.Palette) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to convert image: %w", err)
	}
	Draw(&mat, detections, palette)
	return mat, nil
}

// Write renders the detections and saves the frame to path. The format follows the extension.
func Write(path string, img image.Image, detections []postprocess.Result, palette annotate.Palette, caption string) error {
	mat, err := Render(img, detections, palette)
	if err != nil {
		return err
	}
	defer mat.Close()

	if caption != "" {
		Caption(&mat, caption)
	}
	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("failed to write image to %s", path)
	}
	return nil
}
