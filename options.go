package quadmosaic

import (
	"image"
	"math"
	"math/bits"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// DepthPolicy selects what a tree reports as its maximum depth.
type DepthPolicy string

const (
	// The deepest leaf found while building.
	DepthLeaf DepthPolicy = "LEAF"
	// The configured MaxDepth, whether or not any leaf reaches it.
	DepthConfigured DepthPolicy = "CONFIGURED"
)

func (p DepthPolicy) String() string {
	return string(p)
}

// ParseDepthPolicy returns the policy named by value, or "" when unknown.
func ParseDepthPolicy(value string) DepthPolicy {
	switch DepthPolicy(strings.ToUpper(strings.TrimSpace(value))) {
	case DepthLeaf:
		return DepthLeaf
	case DepthConfigured:
		return DepthConfigured
	}
	return ""
}

type Options struct {
	// Depth at which a node becomes a leaf regardless of its error.
	// Boxes stop shrinking once they are a single pixel, so anything above
	// log2 of the longest side only matters for DepthConfigured.
	MaxDepth int
	// Largest error a region may have and still be a leaf.
	// Lower => more splits, finer mosaics. 7-10 keeps flat areas chunky.
	ErrorThreshold float64
	// What Tree.MaxDepth reports and what leaf queries are checked against.
	DepthPolicy DepthPolicy
}

func DefaultOptions() Options {
	return Options{
		MaxDepth:       1024,
		ErrorThreshold: 7,
		DepthPolicy:    DepthLeaf,
	}
}

// OptionsFromSize caps MaxDepth at the depth where every box of a picture of
// the given size is at most one pixel.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	longest := max(size.X, size.Y)
	opt.MaxDepth = bits.Len(uint(longest - 1))
	return opt
}

func (o Options) Validate() error {
	if o.MaxDepth < 0 {
		return errors.New("max depth is negative").
			WithType(ErrTypeInvalidOptions).
			WithTag("max_depth", o.MaxDepth)
	}
	if o.ErrorThreshold < 0 || math.IsNaN(o.ErrorThreshold) {
		return errors.New("error threshold is negative or not a number").
			WithType(ErrTypeInvalidOptions).
			WithTag("error_threshold", o.ErrorThreshold)
	}
	if o.DepthPolicy != DepthLeaf && o.DepthPolicy != DepthConfigured {
		return errors.New("unknown depth policy").
			WithType(ErrTypeInvalidOptions).
			WithTag("depth_policy", string(o.DepthPolicy))
	}
	return nil
}
