package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "dragsort"

// Metrics holds the Prometheus collectors for a Server.
type Metrics struct {
	dragsStarted   prometheus.Counter
	dragsCompleted prometheus.Counter
	dragsCanceled  prometheus.Counter
	moves          prometheus.Counter
	activeBoards   prometheus.Gauge
	eventDuration  *prometheus.HistogramVec
	protocolErrors *prometheus.CounterVec
}

// NewMetrics registers the server collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		dragsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "drags_started_total",
			Help:      "Total number of drags started",
		}),

		dragsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "drags_completed_total",
			Help:      "Total number of drags that moved their element",
		}),

		dragsCanceled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "drags_canceled_total",
			Help:      "Total number of drags that left their element in place",
		}),

		moves: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "moves_total",
			Help:      "Total number of pointer moves handled during drags",
		}),

		activeBoards: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_boards",
			Help:      "Number of boards with an open connection",
		}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "event_duration_seconds",
			Help:      "Time spent dispatching a client event into its board",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"type"}),

		protocolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "protocol_errors_total",
			Help:      "Total number of malformed or rejected client frames",
		}, []string{"reason"}),
	}
}
