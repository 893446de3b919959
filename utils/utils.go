package utils

import (
	"image"
	"image/color"
	"image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// SortPaletteByBrightness orders colors from darkest to brightest by BT.601
// luma, the same weights the quadtree uses for its error score.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		yi := 0.2989*a.R + 0.5870*a.G + 0.1140*a.B
		yj := 0.2989*b.R + 0.5870*b.G + 0.1140*b.B
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ParsePaletteMethod maps "kmeans" to PaletteMethodKMeans and anything else to
// PaletteMethodDominantColor.
func ParsePaletteMethod(value string) PaletteMethod {
	if strings.EqualFold(strings.TrimSpace(value), PaletteMethodKMeans.String()) {
		return PaletteMethodKMeans
	}
	return PaletteMethodDominantColor
}

func ExtractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}

	nCandidates := max(24, k*8)
	candidates := dominantcolor.FindWeight(img, nCandidates)
	if len(candidates) == 0 {
		// Last resort: avoid empty palette that would break downstream solves.
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1.0,
		})
	}

	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: w})
	}
	return SelectDiverseWeightedColors(weighted, k)
}

func SelectDiverseWeightedColors(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	type item struct {
		col colorful.Color
		lab [3]float64
		w   float64
	}
	items := make([]item, 0, len(cands))
	maxW := 0.0
	for _, c := range cands {
		col := c.Col.Clamped()
		l, a, b := col.Lab()
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		if w > maxW {
			maxW = w
		}
		items = append(items, item{
			col: col,
			lab: [3]float64{l, a, b},
			w:   w,
		})
	}
	if len(items) == 0 {
		return nil
	}
	if k > len(items) {
		k = len(items)
	}
	if maxW <= 0 {
		maxW = 1.0
	}

	selectedIdx := make([]int, 0, k)
	selected := make([]bool, len(items))

	// Seed with strongest color to stay close to dominant tones.
	bestSeed := 0
	bestSeedW := items[0].w
	for i := 1; i < len(items); i++ {
		if items[i].w > bestSeedW {
			bestSeedW = items[i].w
			bestSeed = i
		}
	}
	selectedIdx = append(selectedIdx, bestSeed)
	selected[bestSeed] = true

	for len(selectedIdx) < k {
		bestIdx := -1
		bestScore := -1.0
		for i := range items {
			if selected[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range selectedIdx {
				d0 := items[i].lab[0] - items[s].lab[0]
				d1 := items[i].lab[1] - items[s].lab[1]
				d2 := items[i].lab[2] - items[s].lab[2]
				d2v := d0*d0 + d1*d1 + d2*d2
				if d2v < minD2 {
					minD2 = d2v
				}
			}
			normW := items[i].w / maxW
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(normW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
	}

	out := make([]colorful.Color, 0, len(selectedIdx))
	for _, idx := range selectedIdx {
		out = append(out, items[idx].col)
	}
	return out
}

func ExtractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	// Subsample to keep kmeans tractable on large images.
	maxSamples := 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	if workK <= 0 {
		return nil
	}
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}

	// Sort by cluster population so dominant colors come first.
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		na := len(a.Observations)
		nb := len(b.Observations)
		if na > nb {
			return -1
		}
		if na < nb {
			return 1
		}
		return 0
	})

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		center := c.Center
		if len(center) < 3 {
			continue
		}
		col := colorful.Color{
			R: center[0],
			G: center[1],
			B: center[2],
		}.Clamped()
		w := float64(len(c.Observations))
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{Col: col, Weight: w})
	}
	return SelectDiverseWeightedColors(weighted, k)
}

func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	switch method {
	case PaletteMethodKMeans:
		p := ExtractKMeansPalette(img, k)
		if len(p) != 0 {
			return p
		}
		logs.Warn(errors.New("kmeans returned an empty palette, falling back to dominantcolor").
			WithTag("colors", k))
		return ExtractDominantPalette(img, k)
	default:
		return ExtractDominantPalette(img, k)
	}
}

func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.New("opening image failed").
			WithTag("path", path).
			Wrap(err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.New("decoding image failed").
			WithTag("path", path).
			Wrap(err)
	}
	return img, nil
}

// SaveFrames writes every frame as a numbered PNG into dir.
func SaveFrames(frames []*image.RGBA, dir string) error {
	for i := range frames {
		if err := SaveImage(frames[i], filepath.Join(dir, "depth_0"+strconv.Itoa(i)+".png")); err != nil {
			return err
		}
	}
	return nil
}

func SaveImage(img image.Image, filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}

type GIFOptions struct {
	// Time each frame stays on screen. GIF stores it in hundredths of a second.
	Delay time.Duration
	// 0 loops forever, -1 plays once, n > 0 repeats n extra times.
	LoopCount int
	// Colors extracted for a frame holding more than 256 distinct colors,
	// at most 255 (black is always added). Frames with fewer colors keep
	// them exactly.
	PaletteSize   int
	PaletteMethod PaletteMethod
}

func DefaultGIFOptions() GIFOptions {
	return GIFOptions{
		Delay:         time.Second,
		LoopCount:     0,
		PaletteSize:   255,
		PaletteMethod: PaletteMethodDominantColor,
	}
}

// GIFPalette builds a palette for img: black for padding followed by up to
// size colors extracted from img, darkest first.
func GIFPalette(img image.Image, size int, method PaletteMethod) color.Palette {
	size = max(1, min(255, size))
	colors := ExtractPalette(img, size, method)
	SortPaletteByBrightness(colors)

	palette := make(color.Palette, 0, len(colors)+1)
	palette = append(palette, color.RGBA{A: 255})
	for _, c := range colors {
		r, g, b := c.Clamped().RGB255()
		palette = append(palette, color.RGBA{R: r, G: g, B: b, A: 255})
	}
	return palette
}

// ExactPalette returns the distinct colors of img in scan order, or false when
// there are more than 256 of them.
func ExactPalette(img *image.RGBA) (color.Palette, bool) {
	seen := make(map[color.RGBA]struct{})
	var palette color.Palette
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if _, ok := seen[c]; ok {
				continue
			}
			if len(palette) == 256 {
				return nil, false
			}
			seen[c] = struct{}{}
			palette = append(palette, c)
		}
	}
	return palette, true
}

// Paletted maps every pixel of img to its closest palette entry.
func Paletted(img image.Image, palette color.Palette) *image.Paletted {
	out := image.NewPaletted(img.Bounds(), palette)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

// EncodeGIF gives every frame its own palette: the frame's exact colors when
// it has at most 256, otherwise colors extracted with opt.PaletteMethod.
func EncodeGIF(frames []*image.RGBA, opt GIFOptions) (*gif.GIF, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to encode")
	}
	delay := int(opt.Delay / (10 * time.Millisecond))

	anim := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(frames)),
		Delay:     make([]int, 0, len(frames)),
		LoopCount: opt.LoopCount,
	}
	for _, frame := range frames {
		palette, ok := ExactPalette(frame)
		if !ok {
			palette = GIFPalette(frame, opt.PaletteSize, opt.PaletteMethod)
		}
		anim.Image = append(anim.Image, Paletted(frame, palette))
		anim.Delay = append(anim.Delay, delay)
	}
	return anim, nil
}

func SaveGIF(frames []*image.RGBA, opt GIFOptions, filename string) (err error) {
	anim, err := EncodeGIF(frames, opt)
	if err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := gif.EncodeAll(f, anim); err != nil {
		return errors.New("encoding gif failed").
			WithTag("file_name", filename).
			Wrap(err)
	}
	return nil
}

// SavePalette writes palette as a row of tileSize squares.
func SavePalette(palette []colorful.Color, tileSize int, filename string) error {
	if len(palette) == 0 {
		return errors.New("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	w := tileSize * len(palette)
	h := tileSize
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for i, c := range palette {
		r, g, b := c.Clamped().RGB255()
		tile := image.Rect(i*tileSize, 0, (i+1)*tileSize, h)
		draw.Draw(img, tile, image.NewUniform(color.RGBA{R: r, G: g, B: b, A: 255}), image.Point{}, draw.Src)
	}

	return SaveImage(img, filename)
}
