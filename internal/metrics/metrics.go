// Package metrics exposes frame statistics as Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Faultbox/greed/internal/engine/batch"
)

const (
	namespace   = "greed"
	lodLabel    = "lod"
	resultLabel = "result"
)

var (
	drawCommands = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "draw_commands",
		Help:      "The number of draw commands in the last frame.",
	})

	materialGroups = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "material_groups",
		Help:      "The number of material groups in the last frame.",
	})

	nodesVisited = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "nodes_visited",
		Help:      "The number of scene nodes visited in the last frame.",
	})

	nodesCulled = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "nodes_culled",
		Help:      "The number of scene nodes rejected by the frustum in the last frame.",
	})

	subtreesPruned = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "subtrees_pruned",
		Help:      "The number of subtrees skipped by aggregate bounds in the last frame.",
	})

	lodSelections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lod_selections_total",
		Help:      "The number of draws emitted per level of detail.",
	}, []string{lodLabel})

	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_build_seconds",
		Help:      "Time spent resolving, culling and batching one frame.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
	})

	degenerateFrustums = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "degenerate_frustums_total",
		Help:      "The number of frames built with a degenerate view-projection.",
	})

	levelLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "level_loads_total",
		Help:      "The number of level loads.",
	}, []string{resultLabel})
)

// ObserveFrame records the statistics of one built batch.
func ObserveFrame(stats batch.Stats, elapsed time.Duration) {
	drawCommands.Set(float64(stats.Commands))
	materialGroups.Set(float64(stats.Groups))
	nodesVisited.Set(float64(stats.NodesVisited))
	nodesCulled.Set(float64(stats.NodesCulled))
	subtreesPruned.Set(float64(stats.SubtreesPruned))
	for level, n := range stats.LODHistogram {
		if n > 0 {
			lodSelections.
				With(prometheus.Labels{lodLabel: strconv.Itoa(level)}).
				Add(float64(n))
		}
	}
	if stats.FrustumDegenerate {
		degenerateFrustums.Inc()
	}
	buildDuration.Observe(elapsed.Seconds())
}

// CountLevelLoad records a level load attempt.
func CountLevelLoad(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	levelLoads.With(prometheus.Labels{resultLabel: result}).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
