package quadmosaic

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

var (
	black = color.RGBA{A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// blockImage is a 4x4 checkerboard of 2x2 blocks: black, white on top and
// white, black below.
func blockImage() *image.RGBA {
	img := uniformImage(4, 4, black)
	for y := range 4 {
		for x := range 4 {
			if (x < 2) != (y < 2) {
				img.SetRGBA(x, y, white)
			}
		}
	}
	return img
}

// pixelCheckerImage alternates black and white on every pixel.
func pixelCheckerImage(w, h int) *image.RGBA {
	img := uniformImage(w, h, black)
	for y := range h {
		for x := range w {
			if (x+y)%2 == 1 {
				img.SetRGBA(x, y, white)
			}
		}
	}
	return img
}

func noiseImage(w, h int, seed uint64) *image.RGBA {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / w),
				G: uint8(rng.IntN(256)),
				B: uint8(y * 255 / h),
				A: 255,
			})
		}
	}
	return img
}

func buildTree(t *testing.T, img image.Image, opt Options) *Tree {
	t.Helper()
	tree, err := New(NewImageRaster(img), opt)
	require.NoError(t, err)
	return tree
}

func boxes(nodes []*Node) []image.Rectangle {
	out := make([]image.Rectangle, len(nodes))
	for i, n := range nodes {
		out[i] = n.Box()
	}
	return out
}

func TestNewUniformImage(t *testing.T) {
	c := color.RGBA{R: 12, G: 200, B: 99, A: 255}
	tree := buildTree(t, uniformImage(4, 4, c), DefaultOptions())

	root := tree.Root()
	require.True(t, root.IsLeaf())
	require.Nil(t, root.Children())
	require.Zero(t, root.Error())
	require.Zero(t, root.Depth())
	require.Equal(t, c, root.Color())
	r, g, b := root.Colorful().RGB255()
	require.Equal(t, []uint8{c.R, c.G, c.B}, []uint8{r, g, b})
	require.Equal(t, image.Pt(4, 4), root.Size())
	require.Equal(t, 4, tree.Width())
	require.Equal(t, 4, tree.Height())
	require.Zero(t, tree.MaxDepth())
	require.Equal(t, 1, tree.NodeCount())

	nodes, err := tree.LeafNodes(0)
	require.NoError(t, err)
	require.Equal(t, []*Node{root}, nodes)
}

func TestNewBlockImage(t *testing.T) {
	opt := DefaultOptions()
	opt.ErrorThreshold = 10
	tree := buildTree(t, blockImage(), opt)

	root := tree.Root()
	require.False(t, root.IsLeaf())
	require.InDelta(t, 127.5*(LumaR+LumaG+LumaB), root.Error(), 1e-9)
	require.Equal(t, color.RGBA{R: 127, G: 127, B: 127, A: 255}, root.Color())
	require.Equal(t, 1, tree.MaxDepth())
	require.Equal(t, 5, tree.NodeCount())
	require.Equal(t, 4, tree.LeafCount())

	t.Run("leaves at depth 1", func(t *testing.T) {
		nodes, err := tree.LeafNodes(1)
		require.NoError(t, err)
		require.Len(t, nodes, 4)
		require.Equal(t, root.Children(), nodes)

		colors := []color.RGBA{black, white, white, black}
		for i, n := range nodes {
			require.True(t, n.IsLeaf())
			require.Equal(t, 1, n.Depth())
			require.Zero(t, n.Error())
			require.Equal(t, colors[i], n.Color())
		}
		quads := Split(root.Box())
		require.Equal(t, quads[:], boxes(nodes))
	})

	t.Run("depth 0 stops at the root", func(t *testing.T) {
		nodes, err := tree.LeafNodes(0)
		require.NoError(t, err)
		require.Equal(t, []*Node{root}, nodes)
	})

	t.Run("deeper than the tree", func(t *testing.T) {
		_, err := tree.LeafNodes(tree.MaxDepth() + 1)
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeInvalidDepth))

		// The failed query leaves the tree usable.
		nodes, err := tree.LeafNodes(1)
		require.NoError(t, err)
		require.Len(t, nodes, 4)
	})

	t.Run("negative depth", func(t *testing.T) {
		_, err := tree.LeafNodes(-1)
		require.True(t, errors.IsType(err, ErrTypeInvalidDepth))
	})
}

func TestNewPixelChecker(t *testing.T) {
	tree := buildTree(t, pixelCheckerImage(4, 4), DefaultOptions())
	require.Equal(t, 2, tree.MaxDepth())
	require.Equal(t, 21, tree.NodeCount())
	require.Equal(t, 16, tree.LeafCount())

	t.Run("shallow query keeps internal nodes", func(t *testing.T) {
		nodes, err := tree.LeafNodes(1)
		require.NoError(t, err)
		require.Len(t, nodes, 4)
		for _, n := range nodes {
			require.False(t, n.IsLeaf())
			require.Equal(t, color.RGBA{R: 127, G: 127, B: 127, A: 255}, n.Color())
		}
	})

	t.Run("finest query is single pixels", func(t *testing.T) {
		nodes, err := tree.LeafNodes(2)
		require.NoError(t, err)
		require.Len(t, nodes, 16)
		for _, n := range nodes {
			require.True(t, n.IsLeaf())
			require.Equal(t, image.Pt(1, 1), n.Size())
		}
		// Depth first order: the top-left quadrant comes first.
		require.Equal(t, []image.Rectangle{
			image.Rect(0, 0, 1, 1),
			image.Rect(1, 0, 2, 1),
			image.Rect(0, 1, 1, 2),
			image.Rect(1, 1, 2, 2),
		}, boxes(nodes[:4]))
	})
}

func TestNewMaxDepthCeiling(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxDepth = 1
	tree := buildTree(t, pixelCheckerImage(8, 8), opt)

	require.Equal(t, 1, tree.MaxDepth())
	for _, n := range tree.Root().Children() {
		require.True(t, n.IsLeaf())
		require.Greater(t, n.Error(), opt.ErrorThreshold)
	}

	opt.MaxDepth = 0
	tree = buildTree(t, pixelCheckerImage(8, 8), opt)
	require.True(t, tree.Root().IsLeaf())
	nodes, err := tree.LeafNodes(0)
	require.NoError(t, err)
	require.Equal(t, []*Node{tree.Root()}, nodes)
}

func TestNewDepthConfigured(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxDepth = 6
	opt.DepthPolicy = DepthConfigured
	tree := buildTree(t, blockImage(), opt)

	require.Equal(t, 6, tree.MaxDepth())
	require.Equal(t, 1, tree.LeafDepth())

	deepest, err := tree.LeafNodes(6)
	require.NoError(t, err)
	leaves, err := tree.LeafNodes(1)
	require.NoError(t, err)
	require.Equal(t, leaves, deepest)

	_, err = tree.LeafNodes(7)
	require.True(t, errors.IsType(err, ErrTypeInvalidDepth))
}

func TestNewInvariants(t *testing.T) {
	sizes := []image.Point{{16, 16}, {13, 7}, {5, 3}, {1, 9}, {1, 1}}
	for _, size := range sizes {
		img := noiseImage(size.X, size.Y, uint64(size.X*100+size.Y))
		opt := DefaultOptions()
		opt.ErrorThreshold = 20
		tree := buildTree(t, img, opt)

		nodes := 0
		tree.Walk(func(n *Node) bool {
			nodes++
			require.GreaterOrEqual(t, n.Error(), 0.0)
			require.False(t, math.IsNaN(n.Error()))
			require.Equal(t, n.IsLeaf(), n.Children() == nil)

			if n.IsLeaf() {
				require.True(t, n.Depth() >= opt.MaxDepth || n.Error() <= opt.ErrorThreshold)
				return true
			}
			require.Greater(t, n.Error(), opt.ErrorThreshold)
			require.Len(t, n.Children(), 4)
			for q, child := range n.Children() {
				require.Equal(t, n.Depth()+1, child.Depth())
				require.Equal(t, child, n.Child(Quadrant(q)))
			}
			requireTiled(t, n.Box(), boxes(n.Children()))
			return true
		})
		require.Equal(t, tree.NodeCount(), nodes)

		for depth := 0; depth <= tree.MaxDepth(); depth++ {
			leaves, err := tree.LeafNodes(depth)
			require.NoError(t, err)
			requireTiled(t, img.Bounds(), boxes(leaves))
			for _, n := range leaves {
				require.True(t, n.IsLeaf() || n.Depth() == depth)
				require.LessOrEqual(t, n.Depth(), depth)
			}
		}
	}
}

func TestNewEmptyRegions(t *testing.T) {
	opt := DefaultOptions()
	opt.ErrorThreshold = 0
	tree := buildTree(t, noiseImage(5, 3, 42), opt)

	empty := 0
	tree.Walk(func(n *Node) bool {
		if n.Size().X == 0 || n.Size().Y == 0 {
			empty++
			require.True(t, n.IsLeaf())
			require.Zero(t, n.Error())
			require.Equal(t, black, n.Color())
		}
		return true
	})
	require.Positive(t, empty)

	leaves, err := tree.LeafNodes(tree.MaxDepth())
	require.NoError(t, err)
	requireTiled(t, image.Rect(0, 0, 5, 3), boxes(leaves))
}

func TestNewIsDeterministic(t *testing.T) {
	img := noiseImage(21, 17, 7)
	a := buildTree(t, img, DefaultOptions())
	b := buildTree(t, img, DefaultOptions())

	require.Equal(t, a.Root(), b.Root())
	require.Equal(t, a.NodeCount(), b.NodeCount())
	require.Equal(t, a.MaxDepth(), b.MaxDepth())
}

func TestNewOffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 14, 24))
	c := color.RGBA{R: 1, G: 2, B: 3, A: 255}
	for y := 20; y < 24; y++ {
		for x := 10; x < 14; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	img.SetRGBA(13, 23, white)

	opt := DefaultOptions()
	opt.ErrorThreshold = 0
	tree := buildTree(t, img, opt)
	require.Equal(t, img.Bounds(), tree.Bounds())

	leaves, err := tree.LeafNodesAt(tree.MaxDepth())
	require.NoError(t, err)
	last := leaves[len(leaves)-1]
	require.Equal(t, image.Rect(13, 23, 14, 24), last.Box)
	require.Equal(t, white, last.Color)
}

func TestNewErrors(t *testing.T) {
	img := uniformImage(2, 2, black)

	t.Run("invalid options", func(t *testing.T) {
		for _, opt := range []Options{
			{MaxDepth: -1, ErrorThreshold: 7, DepthPolicy: DepthLeaf},
			{MaxDepth: 4, ErrorThreshold: -1, DepthPolicy: DepthLeaf},
			{MaxDepth: 4, ErrorThreshold: math.NaN(), DepthPolicy: DepthLeaf},
			{MaxDepth: 4, ErrorThreshold: 7, DepthPolicy: "DEEPEST"},
		} {
			_, err := New(NewImageRaster(img), opt)
			require.Error(t, err)
			require.True(t, errors.IsType(err, ErrTypeInvalidOptions))
		}
	})

	t.Run("empty image", func(t *testing.T) {
		_, err := New(NewImageRaster(image.NewRGBA(image.Rectangle{})), DefaultOptions())
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeEmptyImage))
	})
}

func TestLeafNodesAt(t *testing.T) {
	tree := buildTree(t, blockImage(), DefaultOptions())

	tiles, err := tree.LeafNodesAt(1)
	require.NoError(t, err)
	require.Equal(t, []Tile{
		{Box: image.Rect(0, 0, 2, 2), Color: black},
		{Box: image.Rect(2, 0, 4, 2), Color: white},
		{Box: image.Rect(0, 2, 2, 4), Color: white},
		{Box: image.Rect(2, 2, 4, 4), Color: black},
	}, tiles)

	_, err = tree.LeafNodesAt(2)
	require.True(t, errors.IsType(err, ErrTypeInvalidDepth))
}

func TestOptionsFromSize(t *testing.T) {
	require.Equal(t, DefaultOptions(), OptionsFromSize(image.Point{}))
	require.Equal(t, 0, OptionsFromSize(image.Pt(1, 1)).MaxDepth)
	require.Equal(t, 2, OptionsFromSize(image.Pt(4, 3)).MaxDepth)
	require.Equal(t, 3, OptionsFromSize(image.Pt(2, 5)).MaxDepth)
	require.Equal(t, 10, OptionsFromSize(image.Pt(1024, 768)).MaxDepth)

	// A ceiling from OptionsFromSize never cuts a split short.
	img := pixelCheckerImage(5, 3)
	opt := OptionsFromSize(img.Bounds().Size())
	opt.ErrorThreshold = 0
	tree := buildTree(t, img, opt)
	tree.Walk(func(n *Node) bool {
		if n.IsLeaf() {
			require.Zero(t, n.Error())
		}
		return true
	})
}

func TestParseDepthPolicy(t *testing.T) {
	require.Equal(t, DepthLeaf, ParseDepthPolicy("leaf"))
	require.Equal(t, DepthConfigured, ParseDepthPolicy(" Configured "))
	require.Equal(t, DepthPolicy(""), ParseDepthPolicy("deepest"))
}
