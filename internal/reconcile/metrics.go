package reconcile

import "github.com/prometheus/client_golang/prometheus"

var checksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "walletcheck",
		Subsystem: "reconcile",
		Name:      "checks_total",
		Help:      "Total reconciliation checks by kind and result.",
	},
	[]string{"check", "result"},
)

func init() {
	prometheus.MustRegister(checksTotal)
}
