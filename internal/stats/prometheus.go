package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// MeasureLatency records the time elapsed since startTime, in seconds.
func MeasureLatency(observer prometheus.Observer, startTime time.Time) {
	observer.Observe(time.Since(startTime).Seconds())
}

type noopRegistry struct{}

func (*noopRegistry) Register(prometheus.Collector) error  { return nil }
func (*noopRegistry) MustRegister(...prometheus.Collector) {}
func (*noopRegistry) Unregister(prometheus.Collector) bool { return true }

// NewPromethousNoopRegistry returns a registerer that drops
// every collector registered with it.
func NewPromethousNoopRegistry() prometheus.Registerer {
	return &noopRegistry{}
}

// GetMetrics gathers the storage measurements registered with the
// given gatherer and folds them into per operation summaries.
func GetMetrics(gatherer prometheus.Gatherer) (*BenchMetrics, error) {
	benchMetrics := NewBenchMetrics()
	mfs, err := gatherer.Gather()
	if err != nil {
		return nil, err
	}
	for _, mf := range mfs {
		switch mf.GetName() {
		case Namespace + "_storage_latency":
			for _, m := range mf.GetMetric() {
				name := metricKey(m)
				benchMetrics.StoreLatency[name] = NewPercentile(m.GetSummary().GetQuantile())
				benchMetrics.StorageOpsCount[name] = m.GetSummary().GetSampleCount()
			}
		case Namespace + "_storage_error":
			for _, m := range mf.GetMetric() {
				benchMetrics.StorageOpsErrorCount[metricKey(m)] = m.GetCounter().GetValue()
			}
		}
	}
	return benchMetrics, nil
}

// metricKey joins the engine and operation labels, eg. leveldb.get
func metricKey(m *dto.Metric) string {
	var engine, ops string
	for _, lbl := range m.GetLabel() {
		switch lbl.GetName() {
		case "engine":
			engine = lbl.GetValue()
		case "ops":
			ops = lbl.GetValue()
		}
	}
	if engine == "" {
		return ops
	}
	return engine + "." + ops
}
