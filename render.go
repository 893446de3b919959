package quadmosaic

import (
	"image"
	"image/color"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"golang.org/x/image/draw"
)

// LeafSource is what rendering needs from a tree.
type LeafSource interface {
	LeafNodesAt(depth int) ([]Tile, error)
	MaxDepth() int
	Bounds() image.Rectangle
}

type RenderOptions struct {
	// Output pixels per source pixel.
	Scale int
	// Black border added above and left of every tile, in output pixels.
	// 0 gives a seamless mosaic.
	Padding int
	// Copies of the last frame appended by Frames so the finished mosaic
	// stays on screen longer.
	HoldFrames int
}

func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Scale:      1,
		Padding:    0,
		HoldFrames: 4,
	}
}

// Render paints the mosaic of src at depth onto a black canvas of size
// (W*Scale+Padding, H*Scale+Padding).
func Render(src LeafSource, depth int, opt RenderOptions) (*image.RGBA, error) {
	tiles, err := src.LeafNodesAt(depth)
	if err != nil {
		return nil, err
	}
	return RenderTiles(tiles, src.Bounds(), opt), nil
}

// RenderTiles paints tiles laid out in bounds. Tile boxes are translated so
// bounds.Min lands on the canvas origin.
func RenderTiles(tiles []Tile, bounds image.Rectangle, opt RenderOptions) *image.RGBA {
	s := max(1, opt.Scale)
	p := max(0, opt.Padding)
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*s+p, bounds.Dy()*s+p))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.RGBA{A: 255}), image.Point{}, draw.Src)

	for _, t := range tiles {
		box := t.Box.Sub(bounds.Min)
		r := image.Rect(box.Min.X*s+p, box.Min.Y*s+p, box.Max.X*s, box.Max.Y*s)
		if r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y {
			continue
		}
		c := t.Color
		c.A = 255
		draw.Draw(canvas, r, image.NewUniform(c), image.Point{}, draw.Src)
	}
	return canvas
}

// Frames renders one frame per depth from 0 up to but excluding MaxDepth,
// then HoldFrames copies of the MaxDepth frame.
func Frames(src LeafSource, opt RenderOptions) ([]*image.RGBA, error) {
	last, err := Render(src, src.MaxDepth(), opt)
	if err != nil {
		return nil, errors.New("rendering final frame failed").
			WithTag("depth", src.MaxDepth()).
			Wrap(err)
	}

	frames := make([]*image.RGBA, 0, src.MaxDepth()+max(0, opt.HoldFrames))
	for depth := range src.MaxDepth() {
		frame, err := Render(src, depth, opt)
		if err != nil {
			return nil, errors.New("rendering frame failed").
				WithTag("depth", depth).
				Wrap(err)
		}
		frames = append(frames, frame)
	}
	for range max(0, opt.HoldFrames) {
		frames = append(frames, last)
	}
	if len(frames) == 0 {
		frames = append(frames, last)
	}
	return frames, nil
}
