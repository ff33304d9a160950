package rocksdb

import (
	"fmt"
	"strings"
	"time"

	"github.com/flipkart-incubator/gorocksdb"
	"github.com/flipkart-incubator/kvbench/internal/stats"
	"github.com/flipkart-incubator/kvbench/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gopkg.in/ini.v1"
)

// DB interface represents the capabilities exposed
// by the underlying implmentation based on RocksDB engine.
type DB interface {
	storage.KVStore
}

type rocksDB struct {
	db        *gorocksdb.DB
	opts      *rocksDBOpts
	stat      *storage.Stat
	collector prometheus.Collector
}

type rocksDBOpts struct {
	readOpts       *gorocksdb.ReadOptions
	writeOpts      *gorocksdb.WriteOptions
	blockTableOpts *gorocksdb.BlockBasedTableOptions
	rocksDBOpts    *gorocksdb.Options
	folderName     string
	lgr            *zap.Logger
	statsCli       stats.Client
	promRegistry   prometheus.Registerer
	err            error
}

// DBOption is used to configure the RocksDB
// storage engine.
type DBOption func(*rocksDBOpts)

// WithLogger is used to inject a ZAP logger instance.
func WithLogger(lgr *zap.Logger) DBOption {
	return func(opts *rocksDBOpts) {
		if lgr != nil {
			opts.lgr = lgr
		} else {
			opts.lgr = zap.NewNop()
		}
	}
}

// WithPromStats is used to inject a prometheus stats instance
func WithPromStats(registry prometheus.Registerer) DBOption {
	return func(opts *rocksDBOpts) {
		if registry != nil {
			opts.promRegistry = registry
		} else {
			opts.promRegistry = stats.NewPromethousNoopRegistry()
		}
	}
}

// WithStats is used to inject a metrics client.
func WithStats(statsCli stats.Client) DBOption {
	return func(opts *rocksDBOpts) {
		if statsCli != nil {
			opts.statsCli = statsCli
		} else {
			opts.statsCli = stats.NewNoOpClient()
		}
	}
}

// WithSyncWrites ensures all writes to RocksDB are
// immediatey flushed to disk from OS buffers.
func WithSyncWrites() DBOption {
	return func(opts *rocksDBOpts) {
		opts.writeOpts.SetSync(true)
	}
}

// WithCacheSize is used to set the block cache size.
func WithCacheSize(size uint64) DBOption {
	return func(opts *rocksDBOpts) {
		if size > 0 {
			opts.blockTableOpts.SetBlockCache(gorocksdb.NewLRUCache(size))
		} else {
			opts.blockTableOpts.SetNoBlockCache(true)
		}
	}
}

// WithRocksDBConfig can be used to override internal RocksDB
// storage settings through the given .ini file.
func WithRocksDBConfig(iniFile string) DBOption {
	return func(opts *rocksDBOpts) {
		if iniFile = strings.TrimSpace(iniFile); iniFile == "" {
			return
		}
		cfg, err := ini.Load(iniFile)
		if err != nil {
			opts.err = fmt.Errorf("unable to load RocksDB configuration from given file: %s, error: %w", iniFile, err)
			return
		}
		var buff strings.Builder
		for key, val := range cfg.Section("").KeysHash() {
			fmt.Fprintf(&buff, "%s=%s;", key, val)
		}
		rdbOpts, err := gorocksdb.GetOptionsFromString(opts.rocksDBOpts, buff.String())
		if err != nil {
			opts.err = fmt.Errorf("unable to parse RocksDB configuration from given file: %s, error: %w", iniFile, err)
			return
		}
		opts.rocksDBOpts.Destroy()
		opts.rocksDBOpts = rdbOpts
	}
}

// OpenDB initializes a new instance of RocksDB with specified
// options. It uses the given folder for storing the data files
// and creates it if missing.
func OpenDB(dbFolder string, dbOpts ...DBOption) (DB, error) {
	opts := newOptions(dbFolder)
	for _, dbOpt := range dbOpts {
		dbOpt(opts)
	}
	if opts.err != nil {
		opts.destroy()
		return nil, opts.err
	}
	db, err := openStore(opts)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func newOptions(dbFolder string) *rocksDBOpts {
	bbto := gorocksdb.NewDefaultBlockBasedTableOptions()
	opts := gorocksdb.NewDefaultOptions()
	opts.SetCreateIfMissing(true)
	opts.SetCompression(gorocksdb.SnappyCompression)
	wrOpts := gorocksdb.NewDefaultWriteOptions()
	wrOpts.SetSync(false)
	rdOpts := gorocksdb.NewDefaultReadOptions()
	return &rocksDBOpts{
		folderName:     dbFolder,
		blockTableOpts: bbto,
		rocksDBOpts:    opts,
		lgr:            zap.NewNop(),
		readOpts:       rdOpts,
		writeOpts:      wrOpts,
		statsCli:       stats.NewNoOpClient(),
		promRegistry:   stats.NewPromethousNoopRegistry(),
	}
}

func (rdbOpts *rocksDBOpts) destroy() {
	rdbOpts.blockTableOpts.Destroy()
	rdbOpts.rocksDBOpts.Destroy()
	rdbOpts.readOpts.Destroy()
	rdbOpts.writeOpts.Destroy()
}

func openStore(opts *rocksDBOpts) (*rocksDB, error) {
	defer opts.statsCli.Timing("rocksdb.open.latency.ms", time.Now())

	// table options are copied into the DB options, so they
	// must be set after every DBOption has been applied
	opts.rocksDBOpts.SetBlockBasedTableFactory(opts.blockTableOpts)
	db, err := gorocksdb.OpenDb(opts.rocksDBOpts, opts.folderName)
	if err != nil {
		opts.lgr.Error("Unable to open RocksDB", zap.String("folder", opts.folderName), zap.Error(err))
		opts.destroy()
		return nil, err
	}
	opts.lgr.Info("Opened RocksDB", zap.String("folder", opts.folderName))

	rdb := &rocksDB{
		db:   db,
		opts: opts,
		stat: storage.NewStat(opts.promRegistry, "rocksdb"),
	}
	rdb.metricsCollector()
	return rdb, nil
}

func (rdb *rocksDB) Close() error {
	defer rdb.opts.statsCli.Timing("rocksdb.close.latency.ms", time.Now())
	rdb.unRegisterMetricsCollector()
	rdb.db.Close()
	rdb.opts.destroy()
	return nil
}

func (rdb *rocksDB) Put(key []byte, value []byte) error {
	defer rdb.opts.statsCli.Timing("rocksdb.put.latency.ms", time.Now())
	defer stats.MeasureLatency(rdb.stat.RequestLatency.WithLabelValues(stats.Put), time.Now())

	err := rdb.db.Put(rdb.opts.writeOpts, key, value)
	if err != nil {
		rdb.opts.statsCli.Incr("rocksdb.put.errors", 1)
		rdb.stat.ResponseError.WithLabelValues(stats.Put).Inc()
	}
	return err
}

func (rdb *rocksDB) Get(key []byte) ([]byte, error) {
	defer rdb.opts.statsCli.Timing("rocksdb.get.latency.ms", time.Now())
	defer stats.MeasureLatency(rdb.stat.RequestLatency.WithLabelValues(stats.Get), time.Now())

	value, err := rdb.db.Get(rdb.opts.readOpts, key)
	if err != nil {
		rdb.opts.statsCli.Incr("rocksdb.get.errors", 1)
		rdb.stat.ResponseError.WithLabelValues(stats.Get).Inc()
		return nil, err
	}
	defer value.Free()
	if !value.Exists() {
		return nil, storage.ErrNotFound
	}
	return toByteArray(value), nil
}

func toByteArray(value *gorocksdb.Slice) []byte {
	src := value.Data()
	res := make([]byte, len(src))
	copy(res, src)
	return res
}
