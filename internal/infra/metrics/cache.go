package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(resultCacheTotal) }

var resultCacheTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "result_cache_lookups_total",
		Help: "Result cache lookups, labeled by outcome (hit/db_hit/miss).",
	},
	[]string{"outcome"},
)

func IncResultCache(outcome string) {
	resultCacheTotal.WithLabelValues(norm(outcome)).Inc()
}
