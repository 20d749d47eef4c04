// Package observability provides the Prometheus metrics the satnet
// dynamic-state driver exposes.
package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the satnet Prometheus instrumentation.
type Metrics struct {
	StepsProcessed       *prometheus.CounterVec
	AlgorithmDispatches  *prometheus.CounterVec
	UnreachablePairs     *prometheus.GaugeVec
	ISLEdgeCount         prometheus.Gauge
	GSLEdgeCount         prometheus.Gauge
	ShortestPathDuration *prometheus.HistogramVec
	FstateDeltaLines     *prometheus.CounterVec
	BwDeltaLines         *prometheus.CounterVec
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = initializeMetrics()
	})
	return globalMetrics
}

func initializeMetrics() *Metrics {
	m := &Metrics{}

	m.StepsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "satnet",
			Subsystem: "driver",
			Name:      "steps_processed_total",
			Help:      "Total dynamic-state time steps processed",
		},
		[]string{"shard"},
	)

	m.AlgorithmDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "satnet",
			Subsystem: "driver",
			Name:      "algorithm_dispatches_total",
			Help:      "Total forwarding-state algorithm invocations",
		},
		[]string{"algorithm"},
	)

	m.UnreachablePairs = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "satnet",
			Subsystem: "driver",
			Name:      "unreachable_pairs",
			Help:      "Number of (current, destination) pairs with no path at the last processed step",
		},
		[]string{"shard"},
	)

	m.ISLEdgeCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "satnet",
			Subsystem: "topology",
			Name:      "isl_edge_count",
			Help:      "Number of declared inter-satellite links",
		},
	)

	m.GSLEdgeCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "satnet",
			Subsystem: "topology",
			Name:      "gsl_edge_count",
			Help:      "Total ground-station-to-satellite visibility edges at the last processed step",
		},
	)

	m.ShortestPathDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "satnet",
			Subsystem: "driver",
			Name:      "shortest_path_duration_seconds",
			Help:      "Wall-clock time spent computing shortest paths per step",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"algorithm"},
	)

	m.FstateDeltaLines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "satnet",
			Subsystem: "driver",
			Name:      "fstate_delta_lines_total",
			Help:      "Total forwarding-state delta lines written",
		},
		[]string{"shard"},
	)

	m.BwDeltaLines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "satnet",
			Subsystem: "driver",
			Name:      "bw_delta_lines_total",
			Help:      "Total GSL bandwidth delta lines written",
		},
		[]string{"shard"},
	)

	return m
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordStep records one processed time step for the given shard.
func RecordStep(shard string) {
	GetMetrics().StepsProcessed.WithLabelValues(shard).Inc()
}

// RecordAlgorithmDispatch records one algorithm invocation.
func RecordAlgorithmDispatch(algorithm string) {
	GetMetrics().AlgorithmDispatches.WithLabelValues(algorithm).Inc()
}

// RecordUnreachablePairs sets the current unreachable-pair gauge for a shard.
func RecordUnreachablePairs(shard string, count int) {
	GetMetrics().UnreachablePairs.WithLabelValues(shard).Set(float64(count))
}

// RecordISLEdgeCount sets the declared inter-satellite link count gauge.
func RecordISLEdgeCount(count int) {
	GetMetrics().ISLEdgeCount.Set(float64(count))
}

// RecordGSLEdgeCount sets the visibility-edge gauge for the last processed
// step.
func RecordGSLEdgeCount(count int) {
	GetMetrics().GSLEdgeCount.Set(float64(count))
}

// RecordShortestPathDuration records how long one step's shortest-path
// computation took for the given algorithm.
func RecordShortestPathDuration(algorithm string, d time.Duration) {
	GetMetrics().ShortestPathDuration.WithLabelValues(algorithm).Observe(d.Seconds())
}

// RecordFstateDeltaLines adds to the forwarding-state delta line counter.
func RecordFstateDeltaLines(shard string, n int) {
	GetMetrics().FstateDeltaLines.WithLabelValues(shard).Add(float64(n))
}

// RecordBwDeltaLines adds to the bandwidth delta line counter.
func RecordBwDeltaLines(shard string, n int) {
	GetMetrics().BwDeltaLines.WithLabelValues(shard).Add(float64(n))
}
