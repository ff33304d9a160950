package stats

import (
	"io"
	"time"

	"github.com/smira/go-statsd"
	"go.uber.org/zap"
)

// FlushInterval bounds how long a measurement sits in the
// statsd buffer before it is sent.
const FlushInterval = 100 * time.Millisecond

// Tag is a key value pair sent along with every measurement,
// e.g. the storage engine under test.
type Tag struct {
	key, val string
}

func NewTag(key, val string) Tag {
	return Tag{key, val}
}

// Client receives the counters, gauges and timings taken by the
// storage engines and the workloads.
type Client interface {
	io.Closer
	Incr(name string, value int64)
	Gauge(name string, value int64)
	Timing(name string, startTime time.Time)
}

type noopClient struct{}

func (noopClient) Incr(string, int64)       {}
func (noopClient) Gauge(string, int64)      {}
func (noopClient) Timing(string, time.Time) {}
func (noopClient) Close() error             { return nil }

// NewNoOpClient returns a client that drops every measurement.
func NewNoOpClient() Client {
	return noopClient{}
}

type statsDClient struct {
	cli *statsd.Client
}

// statsdLogger routes the statsd client's own send failures to zap.
type statsdLogger struct {
	lgr *zap.SugaredLogger
}

func (sl statsdLogger) Printf(msg string, args ...interface{}) {
	sl.lgr.Warnf(msg, args...)
}

// NewStatsDClient creates a client that sends measurements over UDP
// to the StatsD agent at statsdAddr. Every metric name is prefixed
// with metricPrfx and carries defTags in the DogStatsD format.
func NewStatsDClient(statsdAddr, metricPrfx string, lgr *zap.Logger, defTags ...Tag) Client {
	if lgr == nil {
		lgr = zap.NewNop()
	}
	statsTags := make([]statsd.Tag, len(defTags))
	for i, defTag := range defTags {
		statsTags[i] = statsd.StringTag(defTag.key, defTag.val)
	}
	return &statsDClient{
		statsd.NewClient(
			statsdAddr,
			statsd.MetricPrefix(metricPrfx),
			statsd.TagStyle(statsd.TagFormatDatadog),
			statsd.DefaultTags(statsTags...),
			statsd.FlushInterval(FlushInterval),
			statsd.Logger(statsdLogger{lgr.Sugar()})),
	}
}

func (sdc *statsDClient) Incr(name string, value int64) {
	sdc.cli.Incr(name, value)
}

func (sdc *statsDClient) Gauge(name string, value int64) {
	sdc.cli.Gauge(name, value)
}

func (sdc *statsDClient) Timing(name string, startTime time.Time) {
	sdc.cli.PrecisionTiming(name, time.Since(startTime))
}

// Close flushes any buffered measurements.
func (sdc *statsDClient) Close() error {
	return sdc.cli.Close()
}
