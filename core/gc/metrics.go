package gc

import "github.com/prometheus/client_golang/prometheus"

// metricsSet holds the collector's own prometheus instruments. A fresh,
// unregistered set backs every Heap so multiple Heaps (e.g. one per test)
// never collide on prometheus's default registry; embedders that want
// these exported call Registry() and register it themselves.
type metricsSet struct {
	registry     *prometheus.Registry
	allocTotal   prometheus.Counter
	collectTotal prometheus.Counter
	oomTotal     prometheus.Counter
	liveCells    prometheus.Gauge
	pauseSeconds prometheus.Histogram
}

func newMetricsSet() *metricsSet {
	reg := prometheus.NewRegistry()
	m := &metricsSet{
		registry: reg,
		allocTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsvm_gc_allocations_total",
			Help: "Total cells allocated.",
		}),
		collectTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsvm_gc_collections_total",
			Help: "Total mark-and-sweep cycles run.",
		}),
		oomTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsvm_gc_oom_total",
			Help: "Total allocations that failed with the heap at its hard cell ceiling.",
		}),
		liveCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jsvm_gc_heap_live_bytes",
			Help: "Cells reachable as of the last collection (cell count used as the size proxy).",
		}),
		pauseSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jsvm_gc_pause_seconds",
			Help:    "Stop-the-world duration of each collection cycle.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.allocTotal, m.collectTotal, m.oomTotal, m.liveCells, m.pauseSeconds)
	return m
}

// Registry exposes the heap's private prometheus registry so a host
// embedding jsvm can fold it into its own /metrics endpoint.
func (h *Heap) Registry() *prometheus.Registry { return h.metrics.registry }
