package command

import "github.com/prometheus/client_golang/prometheus"

var recordFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pos_audit_record_failures_total",
		Help: "Audit entries that could not be appended to the transaction log",
	},
	[]string{"action_type"},
)

func init() {
	prometheus.MustRegister(recordFailures)
}
