package storage

import (
	"github.com/flipkart-incubator/kvbench/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
)

// Stat holds the prometheus measurements recorded by an engine.
type Stat struct {
	RequestLatency *prometheus.SummaryVec
	ResponseError  *prometheus.CounterVec
}

// NewStat creates the measurements for the given engine and
// registers them with the given registry.
func NewStat(registry prometheus.Registerer, engine string) *Stat {
	requestLatency := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:   stats.Namespace,
		Name:        "storage_latency",
		Help:        "Latency statistics for storage operations",
		Objectives:  map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		MaxAge:      stats.MaxAge,
		ConstLabels: prometheus.Labels{"engine": engine},
	}, []string{"ops"})
	responseError := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   stats.Namespace,
		Name:        "storage_error",
		Help:        "Error count for storage operations",
		ConstLabels: prometheus.Labels{"engine": engine},
	}, []string{"ops"})
	registry.MustRegister(requestLatency, responseError)
	return &Stat{requestLatency, responseError}
}

// Unregister removes the measurements from the given registry.
func (s *Stat) Unregister(registry prometheus.Registerer) {
	registry.Unregister(s.RequestLatency)
	registry.Unregister(s.ResponseError)
}
