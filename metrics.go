package quadmosaic

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindLabel = "kind"
)

var (
	quadtreeNodeCountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quadtree_node_count_total",
		Help: "The total number of quadtree nodes built.",
	}, []string{kindLabel})

	quadtreeBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quadtree_build_duration_seconds",
		Help:    "The time taken to build a quadtree.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	quadtreeInvalidDepthTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadtree_invalid_depth_total",
		Help: "The total number of leaf queries rejected for asking a depth deeper than the tree.",
	})
)

func instrumentBuild(nodes, leaves int, elapsed time.Duration) {
	quadtreeNodeCountTotal.
		With(prometheus.Labels{kindLabel: "internal"}).
		Add(float64(nodes - leaves))
	quadtreeNodeCountTotal.
		With(prometheus.Labels{kindLabel: "leaf"}).
		Add(float64(leaves))
	quadtreeBuildDuration.Observe(elapsed.Seconds())
}

func instrumentInvalidDepth() {
	quadtreeInvalidDepthTotal.Inc()
}
