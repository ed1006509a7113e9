package broker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Message directions.
const (
	directionHostToCore = "host_to_core"
	directionCoreToHost = "core_to_host"
)

var (
	metricSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "xiview",
		Subsystem: "broker",
		Name:      "sessions_active",
		Help:      "Number of connected host sessions.",
	})
	metricMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xiview",
		Subsystem: "broker",
		Name:      "messages_total",
		Help:      "Messages relayed, by direction and method.",
	}, []string{"direction", "method"})
	metricCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "xiview",
		Subsystem: "broker",
		Name:      "call_duration_seconds",
		Help:      "Time the engine took to answer host requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
	metricErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xiview",
		Subsystem: "broker",
		Name:      "errors_total",
		Help:      "Relay failures, by kind.",
	}, []string{"kind"})
)
