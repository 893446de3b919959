package main

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/encoding/json"
	qm "github.com/setanarut/quadmosaic"
	"github.com/setanarut/quadmosaic/utils"
)

var (
	// The quadmosaic version number. Set at build.
	version = "v0.1.0"
)

// Keeps the config keys readable by the cli package when the binary is obfuscated.
var _ = reflect.TypeOf(config{})

type config struct {
	Input          string        `cli:""        env:"QUADMOSAIC_INPUT"           help:"The image to decompose (png, jpeg, gif, bmp, tiff, webp)."`
	Output         string        `cli:""        env:"QUADMOSAIC_OUTPUT"          help:"PNG file where the mosaic at the given depth is written."`
	GIF            string        `cli:""        env:"QUADMOSAIC_GIF"             help:"GIF file where the coarse to fine reveal animation is written."`
	Tiles          string        `cli:""        env:"QUADMOSAIC_TILES"           help:"JSON file where the tiles at the given depth are written."`
	Palette        string        `cli:",hidden" env:"QUADMOSAIC_PALETTE"         help:"PNG file where the palette of the mosaic at the given depth is written."`
	Depth          int           `cli:""        env:"QUADMOSAIC_DEPTH"           help:"Depth rendered by output and tiles. -1 uses the tree depth."`
	MaxDepth       int           `cli:""        env:"QUADMOSAIC_MAX_DEPTH"       help:"Depth at which regions stop splitting. 0 derives it from the image size."`
	ErrorThreshold float64       `cli:""        env:"QUADMOSAIC_ERROR_THRESHOLD" help:"Largest color error a region may have without being split."`
	DepthPolicy    string        `cli:",hidden" env:"QUADMOSAIC_DEPTH_POLICY"    help:"What the tree depth is (leaf|configured)."`
	Scale          int           `cli:""        env:"QUADMOSAIC_SCALE"           help:"Output pixels per source pixel."`
	Padding        int           `cli:""        env:"QUADMOSAIC_PADDING"         help:"Black border between tiles, in output pixels."`
	Delay          time.Duration `cli:""        env:"QUADMOSAIC_DELAY"           help:"Time each GIF frame is shown."`
	Loop           int           `cli:",hidden" env:"QUADMOSAIC_LOOP"            help:"GIF loop count. 0 loops forever, -1 plays once."`
	HoldFrames     int           `cli:",hidden" env:"QUADMOSAIC_HOLD_FRAMES"     help:"Extra copies of the final GIF frame."`
	PaletteSize    int           `cli:",hidden" env:"QUADMOSAIC_PALETTE_SIZE"    help:"Number of colors extracted for the GIF palette (1-255)."`
	PaletteMethod  string        `cli:",hidden" env:"QUADMOSAIC_PALETTE_METHOD"  help:"GIF palette extraction method (dominantcolor|kmeans)."`
	MetricsFile    string        `cli:",hidden" env:"QUADMOSAIC_METRICS_FILE"    help:"File where build metrics are written in the Prometheus text format."`
	LogLevel       string        `cli:""        env:"QUADMOSAIC_LOG_LEVEL"       help:"Log level (debug|info|warning|error)."`
	LogIndent      bool          `cli:""        env:"QUADMOSAIC_LOG_INDENT"      help:"Indent logs."`
	Version        bool          `cli:""        env:"-"                          help:"Show version."`
	Help           bool          `cli:""        env:"-"                          help:"Show help."`
}

func main() {
	treeOpt := qm.DefaultOptions()
	renderOpt := qm.DefaultRenderOptions()
	gifOpt := utils.DefaultGIFOptions()

	conf := config{
		Depth:          -1,
		ErrorThreshold: treeOpt.ErrorThreshold,
		DepthPolicy:    treeOpt.DepthPolicy.String(),
		Scale:          renderOpt.Scale,
		Padding:        renderOpt.Padding,
		Delay:          gifOpt.Delay,
		Loop:           gifOpt.LoopCount,
		HoldFrames:     renderOpt.HoldFrames,
		PaletteSize:    gifOpt.PaletteSize,
		PaletteMethod:  gifOpt.PaletteMethod.String(),
		LogLevel:       logs.InfoLevel.String(),
	}

	cli.Register().
		Help("Splits an image into a color quadtree and renders it as flat color mosaics.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}
	errors.Encoder = json.Marshal

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	if err := run(conf); err != nil {
		logs.Fatal(err)
	}
}

func run(conf config) error {
	img, err := utils.ReadImage(conf.Input)
	if err != nil {
		return err
	}

	opt := qm.OptionsFromSize(img.Bounds().Size())
	if conf.MaxDepth > 0 {
		opt.MaxDepth = conf.MaxDepth
	}
	opt.ErrorThreshold = conf.ErrorThreshold
	opt.DepthPolicy = qm.ParseDepthPolicy(conf.DepthPolicy)

	tree, err := qm.New(qm.NewImageRaster(img), opt)
	if err != nil {
		return errors.New("building quadtree failed").
			WithTag("input", conf.Input).
			Wrap(err)
	}

	logs.WithTag("input", conf.Input).
		WithTag("width", tree.Width()).
		WithTag("height", tree.Height()).
		WithTag("nodes", tree.NodeCount()).
		WithTag("leaves", tree.LeafCount()).
		WithTag("max_depth", tree.MaxDepth()).
		Info("quadtree built")

	depth := conf.Depth
	if depth < 0 {
		depth = tree.MaxDepth()
	}
	renderOpt := qm.RenderOptions{
		Scale:      conf.Scale,
		Padding:    conf.Padding,
		HoldFrames: conf.HoldFrames,
	}

	if conf.Output != "" {
		mosaic, err := qm.Render(tree, depth, renderOpt)
		if err != nil {
			return err
		}
		if err := utils.SaveImage(mosaic, conf.Output); err != nil {
			return errors.New("saving mosaic failed").
				WithTag("file_name", conf.Output).
				Wrap(err)
		}
		logs.WithTag("file_name", conf.Output).
			WithTag("depth", depth).
			Info("mosaic written")
	}

	if conf.Tiles != "" {
		if err := writeTiles(tree, depth, conf.Tiles); err != nil {
			return err
		}
	}

	if conf.Palette != "" {
		method := utils.ParsePaletteMethod(conf.PaletteMethod)
		if err := writePalette(tree, depth, conf.PaletteSize, method, conf.Palette); err != nil {
			return err
		}
	}

	if conf.GIF != "" {
		frames, err := qm.Frames(tree, renderOpt)
		if err != nil {
			return err
		}
		gifOpt := utils.GIFOptions{
			Delay:         conf.Delay,
			LoopCount:     conf.Loop,
			PaletteSize:   conf.PaletteSize,
			PaletteMethod: utils.ParsePaletteMethod(conf.PaletteMethod),
		}
		if err := utils.SaveGIF(frames, gifOpt, conf.GIF); err != nil {
			return err
		}
		logs.WithTag("file_name", conf.GIF).
			WithTag("frames", len(frames)).
			Info("animation written")
	}

	if conf.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(conf.MetricsFile, prometheus.DefaultGatherer); err != nil {
			return errors.New("writing metrics failed").
				WithTag("file_name", conf.MetricsFile).
				Wrap(err)
		}
	}
	return nil
}

func writeTiles(tree *qm.Tree, depth int, fileName string) error {
	tiles, err := tree.LeafNodesAt(depth)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(tiles, "", "  ")
	if err != nil {
		return errors.New("encoding tiles failed").Wrap(err)
	}
	if err := os.WriteFile(fileName, b, 0o644); err != nil {
		return errors.New("writing tiles failed").
			WithTag("file_name", fileName).
			Wrap(err)
	}
	logs.WithTag("file_name", fileName).
		WithTag("depth", depth).
		WithTag("tiles", len(tiles)).
		Info("tiles written")
	return nil
}

// writePalette saves the colors extracted from the mosaic at depth as a strip
// of swatches, darkest first.
func writePalette(tree *qm.Tree, depth, size int, method utils.PaletteMethod, fileName string) error {
	mosaic, err := qm.Render(tree, depth, qm.RenderOptions{Scale: 1})
	if err != nil {
		return err
	}
	colors := utils.ExtractPalette(mosaic, max(1, size), method)
	utils.SortPaletteByBrightness(colors)
	if err := utils.SavePalette(colors, 64, fileName); err != nil {
		return errors.New("saving palette failed").
			WithTag("file_name", fileName).
			Wrap(err)
	}
	logs.WithTag("file_name", fileName).
		WithTag("depth", depth).
		WithTag("colors", len(colors)).
		Info("palette written")
	return nil
}

func validateConfig(conf config) error {
	if conf.Input == "" {
		return errors.New("input image is required")
	}
	if conf.Output == "" && conf.GIF == "" && conf.Tiles == "" && conf.Palette == "" {
		return errors.New("have to specify at least one of output, gif, tiles or palette")
	}
	if qm.ParseDepthPolicy(conf.DepthPolicy) == "" {
		return errors.New("unknown depth policy").
			WithTag("depth_policy", conf.DepthPolicy)
	}
	if conf.Scale <= 0 {
		return errors.New("scale must be positive").
			WithTag("scale", conf.Scale)
	}
	return nil
}
