package quadmosaic

import (
	"image"
)

// Raster provides the regions a tree is built from.
type Raster interface {
	// Bounds is the full extent of the picture.
	Bounds() image.Rectangle
	// Crop returns the part of the picture inside r.
	Crop(r image.Rectangle) Region
}

// Region is a cropped part of a Raster.
type Region interface {
	Size() image.Point
	// Histogram returns exactly HistogramLen pixel counts, HistogramBuckets per
	// channel in R, G, B order. Tree construction panics on any other length.
	Histogram() []int
}

type rgb8 struct {
	W, H int
	Pix  []uint8 // Interleaved RGB, len = W*H*3
}

func pixOffset(w, x, y int) int {
	return (y*w + x) * 3
}

// ImageRaster is an immutable 8-bit RGB snapshot of an image.Image. Alpha is
// ignored.
type ImageRaster struct {
	bounds image.Rectangle
	rgb    rgb8
}

// NewImageRaster copies img into a packed RGB buffer.
func NewImageRaster(img image.Image) *ImageRaster {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	r := &ImageRaster{
		bounds: bounds,
		rgb: rgb8{
			W:   w,
			H:   h,
			Pix: make([]uint8, w*h*3),
		},
	}
	for y := range h {
		for x := range w {
			cr, cg, cb, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			off := pixOffset(w, x, y)
			r.rgb.Pix[off] = uint8(cr >> 8)
			r.rgb.Pix[off+1] = uint8(cg >> 8)
			r.rgb.Pix[off+2] = uint8(cb >> 8)
		}
	}
	return r
}

func (r *ImageRaster) Bounds() image.Rectangle {
	return r.bounds
}

// Crop clips box to the raster bounds. A box outside the raster gives an empty
// region.
func (r *ImageRaster) Crop(box image.Rectangle) Region {
	return imageRegion{
		raster: r,
		rect:   box.Intersect(r.bounds),
	}
}

type imageRegion struct {
	raster *ImageRaster
	rect   image.Rectangle
}

func (g imageRegion) Size() image.Point {
	return g.rect.Size()
}

func (g imageRegion) Histogram() []int {
	hist := make([]int, HistogramLen)
	rgb := g.raster.rgb
	origin := g.raster.bounds.Min
	for y := g.rect.Min.Y; y < g.rect.Max.Y; y++ {
		for x := g.rect.Min.X; x < g.rect.Max.X; x++ {
			off := pixOffset(rgb.W, x-origin.X, y-origin.Y)
			hist[rgb.Pix[off]]++
			hist[HistogramBuckets+int(rgb.Pix[off+1])]++
			hist[2*HistogramBuckets+int(rgb.Pix[off+2])]++
		}
	}
	return hist
}
