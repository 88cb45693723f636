package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(computeLatencyMs) }

var computeLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "compute_calls_latency_ms",
		Help:    "External compute call latency distribution in milliseconds.",
		Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 15000, 60000, 180000, 300000},
	},
	[]string{"type", "success"},
)

func ObserveComputeCall(jobType string, latencyMs int, success bool) {
	computeLatencyMs.WithLabelValues(norm(jobType), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
