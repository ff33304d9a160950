package stats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNoopRegistry(t *testing.T) {
	reg := NewPromethousNoopRegistry()
	ctr := prometheus.NewCounter(prometheus.CounterOpts{Name: "sample_counter"})
	if err := reg.Register(ctr); err != nil {
		t.Errorf("Expected no error on register, got %v", err)
	}
	// registering twice must not panic
	reg.MustRegister(ctr, ctr)
	if !reg.Unregister(ctr) {
		t.Errorf("Expected unregister to succeed")
	}
}

func TestGetMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	latency := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:   Namespace,
		Name:        "storage_latency",
		Objectives:  map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		ConstLabels: prometheus.Labels{"engine": "leveldb"},
	}, []string{"ops"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   Namespace,
		Name:        "storage_error",
		ConstLabels: prometheus.Labels{"engine": "leveldb"},
	}, []string{"ops"})
	reg.MustRegister(latency, errs)

	numPuts := 10
	for i := 0; i < numPuts; i++ {
		MeasureLatency(latency.WithLabelValues(Put), time.Now().Add(-time.Millisecond))
	}
	MeasureLatency(latency.WithLabelValues(Get), time.Now())
	errs.WithLabelValues(Get).Inc()

	metrics, err := GetMetrics(reg)
	if err != nil {
		t.Fatalf("Unable to gather metrics. Error: %v", err)
	}
	if cnt := metrics.StorageOpsCount["leveldb.put"]; cnt != uint64(numPuts) {
		t.Errorf("Expected %d puts, got %d", numPuts, cnt)
	}
	if cnt := metrics.StorageOpsCount["leveldb.get"]; cnt != 1 {
		t.Errorf("Expected 1 get, got %d", cnt)
	}
	if cnt := metrics.StorageOpsErrorCount["leveldb.get"]; cnt != 1 {
		t.Errorf("Expected 1 get error, got %v", cnt)
	}
	if p := metrics.StoreLatency["leveldb.put"]; p == nil || p.P50 < jFloat64(time.Millisecond.Seconds()) {
		t.Errorf("Expected put p50 of at least 1ms, got %+v", p)
	}

	if _, err := json.Marshal(metrics); err != nil {
		t.Errorf("Unable to marshal metrics. Error: %v", err)
	}
}

func TestBenchMetricsTimeStamp(t *testing.T) {
	now := time.Now().Unix()
	if ts := NewBenchMetrics().TimeStamp; ts < now-1 || ts > now+1 {
		t.Errorf("Expected timestamp close to %d, got %d", now, ts)
	}
}
