package quadmosaic

import "image"

// Quadrant indexes the children of an internal node.
type Quadrant int

const (
	TopLeft Quadrant = iota
	TopRight
	BottomLeft
	BottomRight
)

func (q Quadrant) String() string {
	switch q {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	default:
		return "unknown"
	}
}

// Split cuts box at its midpoints into four boxes ordered top-left, top-right,
// bottom-left, bottom-right.
//
// Midpoints are floored: for an odd width the left half is one pixel narrower
// than the right half, and the same holds vertically. The right and bottom
// halves start exactly where the left and top halves end, so the quadrants
// tile the box with no gap or overlap. A one pixel wide box produces empty
// left quadrants.
func Split(box image.Rectangle) [4]image.Rectangle {
	l, t, r, b := box.Min.X, box.Min.Y, box.Max.X, box.Max.Y
	lr := l + (r-l)/2
	tb := t + (b-t)/2
	return [4]image.Rectangle{
		TopLeft:     image.Rect(l, t, lr, tb),
		TopRight:    image.Rect(lr, t, r, tb),
		BottomLeft:  image.Rect(l, tb, lr, b),
		BottomRight: image.Rect(lr, tb, r, b),
	}
}
