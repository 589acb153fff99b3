package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersAutoReleased = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gigmarket",
		Subsystem: "orders",
		Name:      "auto_released_total",
		Help:      "Total number of orders completed by the auto-release scheduler.",
	})

	outboxDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gigmarket",
		Subsystem: "outbox",
		Name:      "events_dispatched_total",
		Help:      "Total number of outbox events delivered to consumers.",
	}, []string{"event_type"})

	outboxFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gigmarket",
		Subsystem: "outbox",
		Name:      "dispatch_failures_total",
		Help:      "Total number of failed outbox dispatch attempts.",
	})
)
