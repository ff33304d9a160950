package leveldb

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flipkart-incubator/kvbench/internal/stats"
	"github.com/flipkart-incubator/kvbench/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	lvl_storage "github.com/syndtr/goleveldb/leveldb/storage"
	"go.uber.org/zap"
	"gopkg.in/ini.v1"
)

// DB interface represents the capabilities exposed
// by the underlying implementation based on LevelDB.
type DB interface {
	storage.KVStore
}

type levelDB struct {
	db   *leveldb.DB
	opts *levelDBOpts
	stat *storage.Stat
}

type levelDBOpts struct {
	dbOpts       *opt.Options
	readOpts     *opt.ReadOptions
	writeOpts    *opt.WriteOptions
	folderName   string
	inMemory     bool
	lgr          *zap.Logger
	statsCli     stats.Client
	promRegistry prometheus.Registerer
	err          error
}

// tuning lists the LevelDB settings that can be
// overridden through an .ini file.
type tuning struct {
	BlockCacheCapacity     int  `ini:"block_cache_capacity"`
	BlockSize              int  `ini:"block_size"`
	WriteBuffer            int  `ini:"write_buffer"`
	OpenFilesCacheCapacity int  `ini:"open_files_cache_capacity"`
	CompactionTableSize    int  `ini:"compaction_table_size"`
	BloomFilterBits        int  `ini:"bloom_filter_bits"`
	NoCompression          bool `ini:"no_compression"`
}

// DBOption is used to configure the LevelDB
// storage engine.
type DBOption func(*levelDBOpts)

// WithLogger is used to inject a ZAP logger instance.
func WithLogger(lgr *zap.Logger) DBOption {
	return func(opts *levelDBOpts) {
		if lgr != nil {
			opts.lgr = lgr
		} else {
			opts.lgr = zap.NewNop()
		}
	}
}

// WithStats is used to inject a metrics client.
func WithStats(statsCli stats.Client) DBOption {
	return func(opts *levelDBOpts) {
		if statsCli != nil {
			opts.statsCli = statsCli
		} else {
			opts.statsCli = stats.NewNoOpClient()
		}
	}
}

// WithPromStats is used to inject a prometheus registry.
func WithPromStats(registry prometheus.Registerer) DBOption {
	return func(opts *levelDBOpts) {
		if registry != nil {
			opts.promRegistry = registry
		} else {
			opts.promRegistry = stats.NewPromethousNoopRegistry()
		}
	}
}

// WithSyncWrites ensures every write is flushed
// to disk before it is acknowledged.
func WithSyncWrites() DBOption {
	return func(opts *levelDBOpts) {
		opts.writeOpts.Sync = true
	}
}

// WithCacheSize sets the block cache size in bytes.
// A size of 0 keeps the LevelDB default.
func WithCacheSize(size uint64) DBOption {
	return func(opts *levelDBOpts) {
		if size > 0 {
			opts.dbOpts.BlockCacheCapacity = int(size)
		}
	}
}

// WithInMemory keeps all LevelDB files in memory.
// Nothing is written to the DB folder.
func WithInMemory() DBOption {
	return func(opts *levelDBOpts) {
		opts.inMemory = true
	}
}

// WithLevelDBConfig can be used to override internal LevelDB
// storage settings through the given .ini file.
func WithLevelDBConfig(iniFile string) DBOption {
	return func(opts *levelDBOpts) {
		if iniFile = strings.TrimSpace(iniFile); iniFile == "" {
			return
		}
		cfg, err := ini.Load(iniFile)
		if err != nil {
			opts.err = fmt.Errorf("unable to load LevelDB configuration from given file: %s, error: %w", iniFile, err)
			return
		}
		tn := tuning{}
		if err := cfg.StrictMapTo(&tn); err != nil {
			opts.err = fmt.Errorf("unable to parse LevelDB configuration from given file: %s, error: %w", iniFile, err)
			return
		}
		tn.apply(opts.dbOpts)
	}
}

func (tn tuning) apply(o *opt.Options) {
	if tn.BlockCacheCapacity > 0 {
		o.BlockCacheCapacity = tn.BlockCacheCapacity
	}
	if tn.BlockSize > 0 {
		o.BlockSize = tn.BlockSize
	}
	if tn.WriteBuffer > 0 {
		o.WriteBuffer = tn.WriteBuffer
	}
	if tn.OpenFilesCacheCapacity > 0 {
		o.OpenFilesCacheCapacity = tn.OpenFilesCacheCapacity
	}
	if tn.CompactionTableSize > 0 {
		o.CompactionTableSize = tn.CompactionTableSize
	}
	if tn.BloomFilterBits > 0 {
		o.Filter = filter.NewBloomFilter(tn.BloomFilterBits)
	}
	if tn.NoCompression {
		o.Compression = opt.NoCompression
	}
}

// OpenDB initializes a new instance of LevelDB with the specified
// options. The given folder is created if it is missing.
func OpenDB(dbFolder string, dbOpts ...DBOption) (DB, error) {
	opts := newOptions(dbFolder)
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

func newOptions(dbFolder string) *levelDBOpts {
	return &levelDBOpts{
		dbOpts: &opt.Options{
			ErrorIfMissing: false,
			Compression:    opt.SnappyCompression,
		},
		readOpts:     &opt.ReadOptions{},
		writeOpts:    &opt.WriteOptions{Sync: false},
		folderName:   dbFolder,
		lgr:          zap.NewNop(),
		statsCli:     stats.NewNoOpClient(),
		promRegistry: stats.NewPromethousNoopRegistry(),
	}
}

func openStore(opts *levelDBOpts) (*levelDB, error) {
	defer opts.statsCli.Timing("leveldb.open.latency.ms", time.Now())

	var db *leveldb.DB
	var err error
	if opts.inMemory {
		db, err = leveldb.Open(lvl_storage.NewMemStorage(), opts.dbOpts)
	} else {
		db, err = leveldb.OpenFile(opts.folderName, opts.dbOpts)
	}
	if err != nil {
		opts.lgr.Error("Unable to open LevelDB", zap.String("folder", opts.folderName), zap.Error(err))
		return nil, err
	}
	opts.lgr.Info("Opened LevelDB", zap.String("folder", opts.folderName), zap.Bool("inMemory", opts.inMemory))
	return &levelDB{db: db, opts: opts, stat: storage.NewStat(opts.promRegistry, "leveldb")}, nil
}

func (ldb *levelDB) Close() error {
	defer ldb.opts.statsCli.Timing("leveldb.close.latency.ms", time.Now())
	ldb.stat.Unregister(ldb.opts.promRegistry)
	return ldb.db.Close()
}

func (ldb *levelDB) Put(key []byte, value []byte) error {
	defer ldb.opts.statsCli.Timing("leveldb.put.latency.ms", time.Now())
	defer stats.MeasureLatency(ldb.stat.RequestLatency.WithLabelValues(stats.Put), time.Now())

	err := ldb.db.Put(key, value, ldb.opts.writeOpts)
	if err != nil {
		ldb.opts.statsCli.Incr("leveldb.put.errors", 1)
		ldb.stat.ResponseError.WithLabelValues(stats.Put).Inc()
	}
	return err
}

func (ldb *levelDB) Get(key []byte) ([]byte, error) {
	defer ldb.opts.statsCli.Timing("leveldb.get.latency.ms", time.Now())
	defer stats.MeasureLatency(ldb.stat.RequestLatency.WithLabelValues(stats.Get), time.Now())

	value, err := ldb.db.Get(key, ldb.opts.readOpts)
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, leveldb.ErrNotFound):
		return nil, storage.ErrNotFound
	default:
		ldb.opts.statsCli.Incr("leveldb.get.errors", 1)
		ldb.stat.ResponseError.WithLabelValues(stats.Get).Inc()
		return nil, err
	}
}
