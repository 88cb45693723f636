package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsSubmittedTotal, jobsFinishedTotal, jobsReapedTotal) }

var jobsSubmittedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobs_submitted_total",
		Help: "Jobs accepted by the gateway, labeled by job type.",
	},
	[]string{"type"},
)

var jobsFinishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobs_finished_total",
		Help: "Jobs that reached a terminal state, labeled by type and status.",
	},
	[]string{"type", "status"}, // 'completed', 'failed'
)

var jobsReapedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "jobs_reaped_total",
		Help: "Processing jobs failed by the reaper after their lease expired.",
	},
)

func IncJobSubmitted(jobType string) {
	jobsSubmittedTotal.WithLabelValues(norm(jobType)).Inc()
}

func IncJobFinished(jobType, status string) {
	jobsFinishedTotal.WithLabelValues(norm(jobType), norm(status)).Inc()
}

func AddJobsReaped(n int) {
	jobsReapedTotal.Add(float64(n))
}
