package stats

import (
	"strconv"
	"time"

	"github.com/flipkart-incubator/kvbench/internal/clock"
	dto "github.com/prometheus/client_model/go"
)

const (
	Namespace = "kvbench"
	Put       = "put"
	Get       = "get"

	// MaxAge bounds the window of the latency summaries.
	MaxAge = 10 * time.Minute
)

type BenchMetrics struct {
	TimeStamp            int64                  `json:"ts"`
	StoreLatency         map[string]*Percentile `json:"storage_latency"`
	StorageOpsCount      map[string]uint64      `json:"storage_ops_count"`
	StorageOpsErrorCount map[string]float64     `json:"storage_ops_error_count"`
}

func NewBenchMetrics() *BenchMetrics {
	return &BenchMetrics{
		TimeStamp:            clock.Now().Unix(),
		StoreLatency:         make(map[string]*Percentile),
		StorageOpsCount:      make(map[string]uint64),
		StorageOpsErrorCount: make(map[string]float64),
	}
}

type jFloat64 float64

// This is required because json doesnt allow NaN or Inf values
// Based on https://stackoverflow.com/a/32085427
func (fs jFloat64) MarshalJSON() ([]byte, error) {
	vs := strconv.FormatFloat(float64(fs), 'f', 6, 64)
	return []byte(`"` + vs + `"`), nil
}

func (fs *jFloat64) UnmarshalJSON(b []byte) error {
	if b[0] == '"' {
		b = b[1 : len(b)-1]
	}
	f, err := strconv.ParseFloat(string(b), 64)
	*fs = jFloat64(f)
	return err
}

// Percentile holds latencies in seconds.
type Percentile struct {
	P50 jFloat64 `json:"p50"`
	P90 jFloat64 `json:"p90"`
	P99 jFloat64 `json:"p99"`
}

func NewPercentile(quantile []*dto.Quantile) *Percentile {
	percentile := &Percentile{}
	for _, q := range quantile {
		switch q.GetQuantile() {
		case 0.5:
			percentile.P50 = jFloat64(q.GetValue())
		case 0.9:
			percentile.P90 = jFloat64(q.GetValue())
		case 0.99:
			percentile.P99 = jFloat64(q.GetValue())
		}
	}
	return percentile
}
