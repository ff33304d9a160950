package bench

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/flipkart-incubator/kvbench/internal/keys"
	"github.com/flipkart-incubator/kvbench/internal/rng"
	"github.com/flipkart-incubator/kvbench/internal/storage"
	"go.uber.org/zap"
)

// ReadWorkload looks up keys drawn uniformly from the keyspace
// written by a WriteWorkload with the same number of entries.
type ReadWorkload struct {
	gen   *rng.MWC
	count uint
	opts  *benchOpts
}

// NewReadWorkload returns a workload issuing count point reads.
// A count of 0 means DefaultReadCount.
func NewReadWorkload(gen *rng.MWC, count uint, opts ...Option) *ReadWorkload {
	if count == 0 {
		count = DefaultReadCount
	}
	return &ReadWorkload{gen, count, newBenchOpts(opts...)}
}

func (rw *ReadWorkload) Name() string {
	return "read"
}

// Count returns the number of reads the workload issues.
func (rw *ReadWorkload) Count() uint {
	return rw.count
}

// Run issues the reads and stops at the first miss or error. The
// store is expected to hold every key of the keyspace, so a miss
// means the data set is inconsistent.
func (rw *ReadWorkload) Run(kvs storage.KVStore) error {
	defer rw.opts.statsCli.Timing("bench.read.latency.ms", time.Now())
	for i := uint(0); i < rw.count; i++ {
		idx := rw.gen.Intn(rw.opts.numEntries)
		key := keys.Encode(idx)
		switch _, err := kvs.Get(key.Bytes()); {
		case err == nil:
		case errors.Is(err, storage.ErrNotFound):
			rw.opts.lgr.Error("Key missing from store", zap.Uint32("index", idx))
			rw.opts.statsCli.Incr("bench.read.misses", 1)
			return newError(KindReadMiss, fmt.Errorf("entry %d: %w", idx, err))
		default:
			rw.opts.lgr.Error("Unable to GET", zap.Uint32("index", idx), zap.Error(err))
			rw.opts.statsCli.Incr("bench.read.errors", 1)
			return newError(KindRead, fmt.Errorf("get of entry %d failed: %w", idx, err))
		}
	}
	rw.opts.statsCli.Gauge("bench.read.progress", int64(rw.count))
	return nil
}

func (rw *ReadWorkload) String() string {
	return fmt.Sprintf("Workload: %s, Reads: %d, Entries: %d", rw.Name(), rw.count, rw.opts.numEntries)
}

// ParseReadCount reads a leading decimal number the way strtoul does:
// leading white space and a plus sign are skipped and parsing stops at
// the first non digit. Empty, negative and zero counts, as well as
// counts without any digits, yield DefaultReadCount. Counts above
// MaxUint32 saturate.
func ParseReadCount(arg string) uint {
	s := strings.TrimLeft(arg, " \t\n\v\f\r")
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	} else if strings.HasPrefix(s, "-") {
		return DefaultReadCount
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return DefaultReadCount
	}
	n, err := strconv.ParseUint(s[:end], 10, 32)
	if err != nil {
		// only a range error is possible here
		n = math.MaxUint32
	}
	if n == 0 {
		return DefaultReadCount
	}
	return uint(n)
}
