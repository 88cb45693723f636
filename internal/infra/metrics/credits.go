package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(creditsDeductedTotal, creditBlocksTotal) }

var creditsDeductedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "credits_deducted_total",
		Help: "Sum of credits deducted, labeled by job type.",
	},
	[]string{"type"},
)

var creditBlocksTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "credit_blocks_total",
		Help: "Operations blocked by an insufficient balance.",
	},
)

func AddCreditsDeducted(jobType string, amount int64) {
	creditsDeductedTotal.WithLabelValues(norm(jobType)).Add(float64(amount))
}

func IncCreditBlocked() { creditBlocksTotal.Inc() }
