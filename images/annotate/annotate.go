// Package annotate - Colors, labels and label placement for drawn detections.
package annotate

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nvr-ai/janken/images"
	"github.com/nvr-ai/janken/janken"
	"github.com/nvr-ai/janken/models/postprocess"
)

// LabelOffset is the gap in pixels between a box edge and its label baseline.
const LabelOffset = 10

// Palette maps each hand to the color its boxes are drawn with.
type Palette map[janken.Hand]color.RGBA

// DefaultPaletteHex is rock red, paper blue and scissors green.
var DefaultPaletteHex = map[janken.Hand]string{
	janken.Rock:     "#ff0000",
	janken.Paper:    "#0000ff",
	janken.Scissors: "#00ff00",
}

// DefaultPalette returns the palette built from DefaultPaletteHex.
func DefaultPalette() Palette {
	p, err := ParsePalette(DefaultPaletteHex)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePalette builds a palette from hex colors such as "#ff8800".
//
// Arguments:
//   - hex: The color of each hand.
//
// Returns:
//   - Palette: The parsed palette.
//   - error: An error if a color cannot be parsed or a hand is invalid.
func ParsePalette(hex map[janken.Hand]string) (Palette, error) {
	p := make(Palette, len(hex))
	for hand, s := range hex {
		if !hand.Valid() {
			return nil, fmt.Errorf("invalid hand %d in palette", hand)
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("invalid color %q for %s: %w", s, hand, err)
		}
		r, g, b := c.RGB255()
		p[hand] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return p, nil
}

// Color returns the color of the class, white for classes without one.
func (p Palette) Color(class int) color.RGBA {
	hand, ok := janken.HandFromClass(class)
	if !ok {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	c, ok := p[hand]
	if !ok {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return c
}

// Label returns the text drawn next to a detection, e.g. "rock: 0.87".
func Label(d postprocess.Result) string {
	name := fmt.Sprintf("class %d", d.Class)
	if hand, ok := janken.HandFromClass(d.Class); ok {
		name = hand.String()
	}
	return fmt.Sprintf("%s: %.2f", name, d.Score)
}

// Placement is where a label goes relative to its box.
type Placement struct {
	// Origin is the bottom-left corner of the text.
	Origin image.Point
	// Background is the filled rectangle behind the text.
	Background image.Rectangle
}

// Place puts the label above the box, or just inside its top edge when there is not enough
// room above it.
//
// Arguments:
//   - box: The detection box.
//   - text: The rendered size of the label text.
//
// Returns:
//   - Placement: The text origin and its background.
func Place(box images.Rect, text image.Point) Placement {
	x := box.X1
	y := box.Y1 - LabelOffset
	if y <= text.Y {
		y = box.Y1 + LabelOffset
	}
	return Placement{
		Origin:     image.Pt(x, y),
		Background: image.Rect(x, y-text.Y, x+text.X, y+text.Y),
	}
}
