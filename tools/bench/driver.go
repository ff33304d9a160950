package bench

import (
	"fmt"

	"github.com/flipkart-incubator/kvbench/internal/rng"
	"github.com/flipkart-incubator/kvbench/internal/storage"
	"go.uber.org/zap"
)

const (
	WriteMode = "write"
	ReadMode  = "read"
)

// Select picks the workload named by the positional arguments:
// args[0] is the mode and, in read mode, args[1] is the read count.
// It returns nil when the mode is missing or unknown.
func Select(gen *rng.MWC, args []string, opts ...Option) Benchmark {
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case WriteMode:
		return NewWriteWorkload(opts...)
	case ReadMode:
		var count uint
		if len(args) > 1 {
			count = ParseReadCount(args[1])
		}
		return NewReadWorkload(gen, count, opts...)
	default:
		return nil
	}
}

// Dispatch runs the workload selected by args against kvs, framing
// it with banner lines on the configured output. An unknown mode is
// not an error; nothing is run. The store is left open.
func Dispatch(kvs storage.KVStore, gen *rng.MWC, args []string, opts ...Option) error {
	bo := newBenchOpts(opts...)
	bm := Select(gen, args, opts...)
	if bm == nil {
		bo.lgr.Info("No workload selected", zap.Strings("args", args))
		return nil
	}

	switch b := bm.(type) {
	case *WriteWorkload:
		fmt.Fprint(bo.out, "Writing entries...\n")
	case *ReadWorkload:
		fmt.Fprintf(bo.out, "Reading %d random entries...\n", b.Count())
	}
	bo.lgr.Info("Starting workload", zap.Stringer("workload", bm))
	if err := bm.Run(kvs); err != nil {
		return err
	}
	fmt.Fprint(bo.out, "Done.\n")
	return nil
}
