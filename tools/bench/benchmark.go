package bench

import (
	"io"
	"io/ioutil"

	"github.com/flipkart-incubator/kvbench/internal/stats"
	"github.com/flipkart-incubator/kvbench/internal/storage"
	"go.uber.org/zap"
)

const (
	// NumTestEntries is the number of records written by a write run,
	// and the size of the keyspace sampled by a read run.
	NumTestEntries uint32 = 5000000
	// DefaultReadCount is used when no read count is given.
	DefaultReadCount uint = 1000000
)

// Benchmark is a workload issued against a KVStore.
type Benchmark interface {
	Name() string
	Run(kvs storage.KVStore) error
	String() string
}

type benchOpts struct {
	numEntries uint32
	out        io.Writer
	lgr        *zap.Logger
	statsCli   stats.Client
}

// Option is used to configure a workload.
type Option func(*benchOpts)

// WithNumEntries overrides the keyspace size. Write and read runs
// meant to work on the same data must use the same value.
func WithNumEntries(numEntries uint32) Option {
	return func(opts *benchOpts) {
		if numEntries > 0 {
			opts.numEntries = numEntries
		}
	}
}

// WithOutput sets the writer that progress lines go to.
func WithOutput(out io.Writer) Option {
	return func(opts *benchOpts) {
		if out != nil {
			opts.out = out
		} else {
			opts.out = ioutil.Discard
		}
	}
}

// WithLogger is used to inject a ZAP logger instance.
func WithLogger(lgr *zap.Logger) Option {
	return func(opts *benchOpts) {
		if lgr != nil {
			opts.lgr = lgr
		} else {
			opts.lgr = zap.NewNop()
		}
	}
}

// WithStats is used to inject a metrics client.
func WithStats(statsCli stats.Client) Option {
	return func(opts *benchOpts) {
		if statsCli != nil {
			opts.statsCli = statsCli
		} else {
			opts.statsCli = stats.NewNoOpClient()
		}
	}
}

func newBenchOpts(opts ...Option) *benchOpts {
	bo := &benchOpts{
		numEntries: NumTestEntries,
		out:        ioutil.Discard,
		lgr:        zap.NewNop(),
		statsCli:   stats.NewNoOpClient(),
	}
	for _, opt := range opts {
		opt(bo)
	}
	return bo
}
