package wallet

import "github.com/prometheus/client_golang/prometheus"

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "walletcheck",
		Subsystem: "wallet",
		Name:      "requests_total",
		Help:      "Total wallet requests by operation and HTTP status code.",
	},
	[]string{"operation", "status"},
)

func init() {
	prometheus.MustRegister(requestsTotal)
}
