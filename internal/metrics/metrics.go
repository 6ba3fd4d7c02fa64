// Package metrics exposes order lifecycle counters for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	OrdersCreated      *prometheus.CounterVec
	OrdersFlagged      prometheus.Counter
	StatusTransitions  *prometheus.CounterVec
	InvalidTransitions *prometheus.CounterVec
	ReviewsAdded       prometheus.Counter
	PollerRuns         prometheus.Counter
	EventsPublished    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "haatbazar",
			Name:      "orders_created_total",
			Help:      "Orders created, by fulfillment kind and payment method.",
		}, []string{"kind", "payment_method"}),
		OrdersFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "haatbazar",
			Name:      "orders_flagged_total",
			Help:      "Orders marked as likely spam.",
		}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "haatbazar",
			Name:      "order_status_transitions_total",
			Help:      "Applied order status transitions.",
		}, []string{"from", "to"}),
		InvalidTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "haatbazar",
			Name:      "order_invalid_transitions_total",
			Help:      "Refused order status transitions.",
		}, []string{"from", "to"}),
		ReviewsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "haatbazar",
			Name:      "reviews_added_total",
			Help:      "Reviews submitted.",
		}),
		PollerRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "haatbazar",
			Name:      "notification_poller_runs_total",
			Help:      "Notification poller ticks.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "haatbazar",
			Name:      "order_events_published_total",
			Help:      "Order events handed to the broker, by type and result.",
		}, []string{"type", "result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.OrdersCreated, m.OrdersFlagged, m.StatusTransitions, m.InvalidTransitions,
		m.ReviewsAdded, m.PollerRuns, m.EventsPublished,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
