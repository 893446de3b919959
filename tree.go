package quadmosaic

import (
	"image"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// Tree is a quadtree decomposition of a picture. A region is split into four
// while its error is above Options.ErrorThreshold and Options.MaxDepth is not
// reached.
type Tree struct {
	root      *Node
	width     int
	height    int
	opt       Options
	leafDepth int
	nodes     int
	leaves    int
}

// New builds the whole tree for raster eagerly, depth first, visiting
// children in top-left, top-right, bottom-left, bottom-right order.
func New(raster Raster, opt Options) (*Tree, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	bounds := raster.Bounds()
	if bounds.Empty() {
		return nil, errors.New("raster has no pixels").
			WithType(ErrTypeEmptyImage).
			WithTag("bounds", bounds.String())
	}

	start := time.Now()
	b := builder{
		raster: raster,
		opt:    opt,
	}
	root := b.build(bounds, 0)
	elapsed := time.Since(start)
	instrumentBuild(b.nodes, b.leaves, elapsed)

	logs.WithTag("width", bounds.Dx()).
		WithTag("height", bounds.Dy()).
		WithTag("nodes", b.nodes).
		WithTag("leaves", b.leaves).
		WithTag("leaf_depth", b.leafDepth).
		WithTag("elapsed", elapsed.String()).
		Debug("quadtree built")

	return &Tree{
		root:      root,
		width:     bounds.Dx(),
		height:    bounds.Dy(),
		opt:       opt,
		leafDepth: b.leafDepth,
		nodes:     b.nodes,
		leaves:    b.leaves,
	}, nil
}

type builder struct {
	raster    Raster
	opt       Options
	leafDepth int
	nodes     int
	leaves    int
}

// build returns the finished node for box, with its whole subtree attached.
func (b *builder) build(box image.Rectangle, depth int) *Node {
	region := b.raster.Crop(box)
	c, e := ColorFromHistogram(region.Histogram())
	n := &Node{
		box:   box,
		depth: depth,
		size:  region.Size(),
		color: c,
		err:   e,
	}
	b.nodes++

	if depth >= b.opt.MaxDepth || e <= b.opt.ErrorThreshold {
		n.leaf = true
		b.leaves++
		b.leafDepth = max(b.leafDepth, depth)
		return n
	}

	var children [4]*Node
	for i, q := range Split(box) {
		children[i] = b.build(q, depth+1)
	}
	n.children = &children
	return n
}

func (t *Tree) Root() *Node {
	return t.root
}

func (t *Tree) Width() int {
	return t.width
}

func (t *Tree) Height() int {
	return t.height
}

func (t *Tree) Bounds() image.Rectangle {
	return t.root.box
}

func (t *Tree) Options() Options {
	return t.opt
}

// MaxDepth is the deepest depth leaf queries accept. It is the deepest leaf
// for DepthLeaf and Options.MaxDepth for DepthConfigured.
func (t *Tree) MaxDepth() int {
	if t.opt.DepthPolicy == DepthConfigured {
		return t.opt.MaxDepth
	}
	return t.leafDepth
}

// LeafDepth is the depth of the deepest leaf whatever the policy. Queries
// deeper than it return the same nodes as a query at it.
func (t *Tree) LeafDepth() int {
	return t.leafDepth
}

func (t *Tree) NodeCount() int {
	return t.nodes
}

func (t *Tree) LeafCount() int {
	return t.leaves
}

// LeafNodes returns the nodes that make up the mosaic at depth: every node at
// exactly depth plus every leaf shallower than it. Nodes come in depth first
// top-left, top-right, bottom-left, bottom-right order and tile the picture.
// A negative depth or one above MaxDepth fails with ErrTypeInvalidDepth.
func (t *Tree) LeafNodes(depth int) ([]*Node, error) {
	if depth < 0 || depth > t.MaxDepth() {
		instrumentInvalidDepth()
		return nil, errors.New("depth is outside the tree depth").
			WithType(ErrTypeInvalidDepth).
			WithTag("depth", depth).
			WithTag("max_depth", t.MaxDepth())
	}

	var nodes []*Node
	t.Walk(func(n *Node) bool {
		if n.leaf || n.depth == depth {
			nodes = append(nodes, n)
			return false
		}
		return true
	})
	return nodes, nil
}

// LeafNodesAt is LeafNodes reduced to tiles.
func (t *Tree) LeafNodesAt(depth int) ([]Tile, error) {
	nodes, err := t.LeafNodes(depth)
	if err != nil {
		return nil, err
	}
	tiles := make([]Tile, len(nodes))
	for i, n := range nodes {
		tiles[i] = n.Tile()
	}
	return tiles, nil
}

// Walk visits nodes depth first from the root. Children of a node are only
// visited when fn returns true for it.
func (t *Tree) Walk(fn func(n *Node) bool) {
	walk(t.root, fn)
}

func walk(n *Node, fn func(n *Node) bool) {
	if !fn(n) || n.children == nil {
		return
	}
	for _, child := range n.children {
		walk(child, fn)
	}
}
