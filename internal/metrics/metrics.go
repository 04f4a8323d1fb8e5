// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printfarm_orders_created_total",
		Help: "Orders accepted into the queue.",
	})
	OrdersClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printfarm_orders_claimed_total",
		Help: "Queued orders handed to a printer.",
	})
	OrdersCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printfarm_orders_completed_total",
		Help: "Orders moved to complete by their printer.",
	})
	OrdersRequeued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printfarm_orders_requeued_total",
		Help: "Orders taken back from printers whose lease expired.",
	})
	CompletionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "printfarm_completion_rejected_total",
		Help: "Completion reports refused, by error code.",
	}, []string{"code"})
	Heartbeats = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "printfarm_heartbeats_total",
		Help: "Printer heartbeats by reported status.",
	}, []string{"status"})
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "printfarm_push_notifications_total",
		Help: "Web push deliveries by outcome.",
	}, []string{"outcome"})
	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printfarm_push_notifications_dropped_total",
		Help: "Completion notifications dropped because the worker queue was full.",
	})
)
