package quadmosaic

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// Buckets per channel in a region histogram.
	HistogramBuckets = 256
	// Length of a full R, G, B histogram.
	HistogramLen = 3 * HistogramBuckets
)

// ITU-R BT.601 luma coefficients used to fold per-channel error into one score.
const (
	LumaR = 0.2989
	LumaG = 0.5870
	LumaB = 0.1140
)

var intensities = func() []float64 {
	v := make([]float64, HistogramBuckets)
	for i := range v {
		v[i] = float64(i)
	}
	return v
}()

// WeightedAverage returns the mean intensity of a single channel histogram and
// its population standard deviation. An empty histogram yields (0, 0).
// bucket must hold exactly HistogramBuckets counts; any other length panics.
func WeightedAverage(bucket []int) (value, err float64) {
	if len(bucket) != HistogramBuckets {
		panic(fmt.Sprintf("quadmosaic: channel histogram has %d buckets, want %d", len(bucket), HistogramBuckets))
	}
	weights := make([]float64, len(bucket))
	for i, c := range bucket {
		weights[i] = float64(c)
	}
	if floats.Sum(weights) <= 0 {
		return 0, 0
	}
	mean, variance := stat.PopMeanVariance(intensities, weights)
	return mean, math.Sqrt(max(0, variance))
}

// ColorFromHistogram reduces a 768 bucket R, G, B histogram to the truncated
// average color and the luma weighted sum of the channel errors. hist must hold
// exactly HistogramLen counts; any other length panics.
func ColorFromHistogram(hist []int) (color.RGBA, float64) {
	if len(hist) != HistogramLen {
		panic(fmt.Sprintf("quadmosaic: histogram has %d buckets, want %d", len(hist), HistogramLen))
	}
	r, re := WeightedAverage(hist[:HistogramBuckets])
	g, ge := WeightedAverage(hist[HistogramBuckets : 2*HistogramBuckets])
	b, be := WeightedAverage(hist[2*HistogramBuckets : HistogramLen])
	c := color.RGBA{
		R: channel(r),
		G: channel(g),
		B: channel(b),
		A: 255,
	}
	return c, re*LumaR + ge*LumaG + be*LumaB
}

func channel(v float64) uint8 {
	return uint8(max(0, min(255, v)))
}
