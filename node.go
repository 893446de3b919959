package quadmosaic

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Node is a region of the picture approximated by one flat color. Nodes are
// read-only once the tree that owns them is built.
type Node struct {
	box      image.Rectangle
	depth    int
	size     image.Point
	color    color.RGBA
	err      float64
	leaf     bool
	children *[4]*Node
}

func (n *Node) Box() image.Rectangle {
	return n.box
}

// Depth is 0 for the root and parent depth + 1 for every child.
func (n *Node) Depth() int {
	return n.depth
}

// Size is the pixel size of the region the node was computed from.
func (n *Node) Size() image.Point {
	return n.size
}

// Color is the truncated average color of the region.
func (n *Node) Color() color.RGBA {
	return n.color
}

// Colorful returns Color as a colorful.Color.
func (n *Node) Colorful() colorful.Color {
	c, _ := colorful.MakeColor(n.color)
	return c
}

// Error is the luma weighted standard deviation of the region's channels.
func (n *Node) Error() float64 {
	return n.err
}

func (n *Node) IsLeaf() bool {
	return n.leaf
}

// Children returns the four children in top-left, top-right, bottom-left,
// bottom-right order, or nil for a leaf.
func (n *Node) Children() []*Node {
	if n.children == nil {
		return nil
	}
	out := *n.children
	return out[:]
}

// Child returns a single child, or nil for a leaf.
func (n *Node) Child(q Quadrant) *Node {
	if n.children == nil || q < TopLeft || q > BottomRight {
		return nil
	}
	return n.children[q]
}

// Tile strips the node down to what a renderer needs.
func (n *Node) Tile() Tile {
	return Tile{
		Box:   n.box,
		Color: n.color,
	}
}

// Tile is a flat colored rectangle of a mosaic.
type Tile struct {
	Box   image.Rectangle `json:"box"`
	Color color.RGBA      `json:"color"`
}
