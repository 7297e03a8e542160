package handler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ordersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shop_backend",
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Total number of orders created",
		},
	)

	verifyReconciled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shop_backend",
			Subsystem: "payments",
			Name:      "verify_reconciled_total",
			Help:      "Total number of orders reconciled through the verify endpoint",
		},
	)

	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shop_backend",
			Subsystem: "payments",
			Name:      "webhook_events_total",
			Help:      "Total number of webhook deliveries by result",
		},
		[]string{"result"},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(
		ordersCreated,
		verifyReconciled,
		webhookEvents,
	)
}
