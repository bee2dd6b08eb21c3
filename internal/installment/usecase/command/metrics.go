package command

import "github.com/prometheus/client_golang/prometheus"

var (
	paymentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_installment_payments_total",
			Help: "Number of installment payments recorded",
		},
	)

	lateContracts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pos_contracts_late",
			Help: "Contracts past due by more than the grace period",
		},
	)
)

func init() {
	prometheus.MustRegister(paymentsTotal, lateContracts)
}
