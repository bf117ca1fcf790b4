// Package images - Image geometry and loading utilities.
package images

import "image"

// Rect is a lightweight bounding box in pixel coordinates.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 int
}

// RectFromLTWH builds a Rect from its top-left corner and its size.
//
// Arguments:
//   - left: The left edge of the box.
//   - top: The top edge of the box.
//   - width: The width of the box, negative values are treated as zero.
//   - height: The height of the box, negative values are treated as zero.
//
// Returns:
//   - Rect: The box with X2 = left+width and Y2 = top+height.
func RectFromLTWH(left, top, width, height int) Rect {
	return Rect{
		X1: left,
		Y1: top,
		X2: left + max(width, 0),
		Y2: top + max(height, 0),
	}
}

// Width returns the horizontal extent of the box.
func (r Rect) Width() int {
	return r.X2 - r.X1
}

// Height returns the vertical extent of the box.
func (r Rect) Height() int {
	return r.Y2 - r.Y1
}

// Area returns the area of the box in pixels, zero for degenerate boxes.
func (r Rect) Area() int {
	if r.Width() <= 0 || r.Height() <= 0 {
		return 0
	}
	return r.Width() * r.Height()
}

// ToRectangle converts the box to an image.Rectangle for drawing.
func (r Rect) ToRectangle() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// CalculateIoU returns the Intersection over Union of two boxes.
//
// The intersection is bounded by the larger of the two top-left corners and the smaller of
// the two bottom-right corners. Boxes that only touch, or do not overlap at all, score 0.
// The union follows inclusion-exclusion: area(r) + area(o) - intersection.
//
// Arguments:
//   - r: The first box.
//   - o: The second box.
//
// Returns:
//   - float32: A value in [0, 1]; 1 means the boxes are identical.
//
// Example:
//
// ```go
//
//	a := Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
//	b := Rect{X1: 5, Y1: 5, X2: 15, Y2: 15}
//	CalculateIoU(a, b) // 25 / 175 = 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}

	return float32(interArea) / float32(unionArea)
}
