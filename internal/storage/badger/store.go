package badger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/dgraph-io/badger/v2/options"
	"github.com/flipkart-incubator/kvbench/internal/stats"
	"github.com/flipkart-incubator/kvbench/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	ini "gopkg.in/ini.v1"
)

const defBlockCacheSize = 256 << 20

// DB interface represents the capabilities exposed
// by the underlying implmentation based on Badger engine.
type DB interface {
	storage.KVStore
}

type badgerDB struct {
	db        *badger.DB
	opts      *bdgrOpts
	stat      *storage.Stat
	collector prometheus.Collector
}

type bdgrOpts struct {
	opts         badger.Options
	lgr          *zap.Logger
	statsCli     stats.Client
	promRegistry prometheus.Registerer
	err          error
}

// DBOption is used to configure the Badger
// storage engine.
type DBOption func(*bdgrOpts)

// WithLogger is used to inject a ZAP logger instance.
func WithLogger(lgr *zap.Logger) DBOption {
	return func(opts *bdgrOpts) {
		if lgr == nil {
			lgr = zap.NewNop()
		}
		opts.lgr = lgr
		opts.opts = opts.opts.WithLogger(&zapBadgerLogger{lgr: lgr})
	}
}

// WithStats is used to inject a metrics client.
func WithStats(statsCli stats.Client) DBOption {
	return func(opts *bdgrOpts) {
		if statsCli != nil {
			opts.statsCli = statsCli
		} else {
			opts.statsCli = stats.NewNoOpClient()
		}
	}
}

// WithPromStats is used to inject a prometheus registry.
func WithPromStats(registry prometheus.Registerer) DBOption {
	return func(opts *bdgrOpts) {
		if registry != nil {
			opts.promRegistry = registry
		} else {
			opts.promRegistry = stats.NewPromethousNoopRegistry()
		}
	}
}

// WithSyncWrites configures Badger to ensure every
// write is flushed to disk before acking back.
func WithSyncWrites() DBOption {
	return func(opts *bdgrOpts) {
		opts.opts = opts.opts.WithSyncWrites(true)
	}
}

// WithCacheSize sets the value in bytes the amount of
// cache used for data blocks. A size of 0 keeps the default.
func WithCacheSize(size uint64) DBOption {
	return func(opts *bdgrOpts) {
		if size > 0 {
			opts.opts = opts.opts.WithBlockCacheSize(int64(size))
		}
	}
}

// WithBadgerConfig can be used to override internal Badger
// storage settings through the given .ini file. Keys are
// the field names of badger.Options.
func WithBadgerConfig(iniFile string) DBOption {
	return func(opts *bdgrOpts) {
		if iniFile = strings.TrimSpace(iniFile); iniFile == "" {
			return
		}
		cfg, err := ini.Load(iniFile)
		if err != nil {
			opts.err = fmt.Errorf("unable to load Badger configuration from given file: %s, error: %w", iniFile, err)
			return
		}
		stOpts := opts.opts
		if err := cfg.StrictMapTo(&stOpts); err != nil {
			opts.err = fmt.Errorf("unable to parse Badger configuration from given file: %s, error: %w", iniFile, err)
			return
		}
		opts.opts = stOpts
	}
}

// WithInMemory sets Badger storage to operate entirely
// in memory. No files are created on disk whatsoever.
func WithInMemory() DBOption {
	return func(opts *bdgrOpts) {
		opts.opts = opts.opts.WithDir("").WithValueDir("").WithInMemory(true)
	}
}

// OpenDB initializes a new instance of BadgerDB with the specified
// options. The given folder holds both the LSM and value log files.
func OpenDB(dbFolder string, dbOpts ...DBOption) (DB, error) {
	noopLgr := zap.NewNop()
	opts := &bdgrOpts{
		opts: badger.DefaultOptions(dbFolder).
			WithLogger(&zapBadgerLogger{lgr: noopLgr}).
			WithSyncWrites(false).
			WithCompression(options.Snappy).
			WithBlockCacheSize(defBlockCacheSize),
		lgr:          noopLgr,
		statsCli:     stats.NewNoOpClient(),
		promRegistry: stats.NewPromethousNoopRegistry(),
	}
	for _, dbOpt := range dbOpts {
		dbOpt(opts)
	}
	if opts.err != nil {
		return nil, opts.err
	}
	db, err := openStore(opts)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func openStore(bdbOpts *bdgrOpts) (*badgerDB, error) {
	defer bdbOpts.statsCli.Timing("badger.open.latency.ms", time.Now())
	db, err := badger.Open(bdbOpts.opts)
	if err != nil {
		bdbOpts.lgr.Error("Unable to open Badger", zap.String("folder", bdbOpts.opts.Dir), zap.Error(err))
		return nil, err
	}
	bdbOpts.lgr.Info("Opened Badger", zap.String("folder", bdbOpts.opts.Dir), zap.Bool("inMemory", bdbOpts.opts.InMemory))
	bdb := &badgerDB{
		db:   db,
		opts: bdbOpts,
		stat: storage.NewStat(bdbOpts.promRegistry, "badger"),
	}
	bdb.metricsCollector()
	return bdb, nil
}

func (bdb *badgerDB) Close() error {
	defer bdb.opts.statsCli.Timing("badger.close.latency.ms", time.Now())
	bdb.unRegisterMetricsCollector()
	return bdb.db.Close()
}

func (bdb *badgerDB) Put(key []byte, value []byte) error {
	defer bdb.opts.statsCli.Timing("badger.put.latency.ms", time.Now())
	defer stats.MeasureLatency(bdb.stat.RequestLatency.WithLabelValues(stats.Put), time.Now())
	err := bdb.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		bdb.opts.statsCli.Incr("badger.put.errors", 1)
		bdb.stat.ResponseError.WithLabelValues(stats.Put).Inc()
	}
	return err
}

func (bdb *badgerDB) Get(key []byte) ([]byte, error) {
	defer bdb.opts.statsCli.Timing("badger.get.latency.ms", time.Now())
	defer stats.MeasureLatency(bdb.stat.RequestLatency.WithLabelValues(stats.Get), time.Now())
	var value []byte
	err := bdb.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, storage.ErrNotFound
	default:
		bdb.opts.statsCli.Incr("badger.get.errors", 1)
		bdb.stat.ResponseError.WithLabelValues(stats.Get).Inc()
		return nil, err
	}
}

type zapBadgerLogger struct {
	lgr *zap.Logger
}

func (blgr *zapBadgerLogger) Errorf(msg string, args ...interface{}) {
	if ce := blgr.lgr.Check(zap.ErrorLevel, msg); ce != nil {
		blgr.log(ce, args...)
	}
}

func (blgr *zapBadgerLogger) Warningf(msg string, args ...interface{}) {
	if ce := blgr.lgr.Check(zap.WarnLevel, msg); ce != nil {
		blgr.log(ce, args...)
	}
}

func (blgr *zapBadgerLogger) Infof(msg string, args ...interface{}) {
	if ce := blgr.lgr.Check(zap.InfoLevel, msg); ce != nil {
		blgr.log(ce, args...)
	}
}

func (blgr *zapBadgerLogger) Debugf(msg string, args ...interface{}) {
	if ce := blgr.lgr.Check(zap.DebugLevel, msg); ce != nil {
		blgr.log(ce, args...)
	}
}

func (blgr *zapBadgerLogger) log(ce *zapcore.CheckedEntry, args ...interface{}) {
	flds := make([]zap.Field, len(args))
	for i, arg := range args {
		flds[i] = zap.Any(strconv.Itoa(i), arg)
	}
	ce.Write(flds...)
}
