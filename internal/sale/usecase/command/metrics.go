package command

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/pos-ledger/internal/sale/domain"
)

var (
	salesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_sales_total",
			Help: "Number of finalized sales",
		},
		[]string{"payment_method"},
	)

	salesAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_sales_amount_total",
			Help: "Sum of finalized sale totals",
		},
		[]string{"payment_method"},
	)
)

func init() {
	prometheus.MustRegister(salesTotal, salesAmount)
}

func observeSale(sale *domain.Sale) {
	method := string(sale.PaymentMethod)
	salesTotal.WithLabelValues(method).Inc()
	salesAmount.WithLabelValues(method).Add(sale.Total.InexactFloat64())
}
