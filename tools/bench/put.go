package bench

import (
	"fmt"
	"time"

	"github.com/flipkart-incubator/kvbench/internal/keys"
	"github.com/flipkart-incubator/kvbench/internal/storage"
	"go.uber.org/zap"
)

// WriteWorkload inserts the keys 0 .. N-1 in ascending order.
type WriteWorkload struct {
	opts *benchOpts
}

// NewWriteWorkload returns a workload that populates the
// whole keyspace.
func NewWriteWorkload(opts ...Option) *WriteWorkload {
	return &WriteWorkload{newBenchOpts(opts...)}
}

func (ww *WriteWorkload) Name() string {
	return "write"
}

// progressInterval is one sixteenth of the keyspace. Keyspaces
// smaller than 16 report every entry.
func (ww *WriteWorkload) progressInterval() uint32 {
	if interval := ww.opts.numEntries >> 4; interval > 0 {
		return interval
	}
	return 1
}

// Run issues one put per key and stops at the first error.
func (ww *WriteWorkload) Run(kvs storage.KVStore) error {
	defer ww.opts.statsCli.Timing("bench.write.latency.ms", time.Now())
	interval := ww.progressInterval()
	for i := uint32(0); i < ww.opts.numEntries; i++ {
		key, value := keys.Encode(i), keys.EncodeValue(i)
		if err := kvs.Put(key.Bytes(), value.Bytes()); err != nil {
			ww.opts.lgr.Error("Unable to PUT", zap.Uint32("index", i), zap.Error(err))
			ww.opts.statsCli.Incr("bench.write.errors", 1)
			return newError(KindWrite, fmt.Errorf("put of entry %d failed: %w", i, err))
		}
		if i%interval == 0 {
			fmt.Fprintf(ww.opts.out, "%d...\n", i)
			ww.opts.statsCli.Gauge("bench.write.progress", int64(i))
			ww.opts.lgr.Debug("Write progress", zap.Uint32("index", i))
		}
	}
	return nil
}

func (ww *WriteWorkload) String() string {
	return fmt.Sprintf("Workload: %s, Entries: %d", ww.Name(), ww.opts.numEntries)
}
