package main

import (
	"fmt"

	"github.com/flipkart-incubator/kvbench/internal/opts"
	"github.com/flipkart-incubator/kvbench/internal/stats"
	"github.com/flipkart-incubator/kvbench/internal/storage"
	"github.com/flipkart-incubator/kvbench/internal/storage/badger"
	"github.com/flipkart-incubator/kvbench/internal/storage/leveldb"
	"github.com/flipkart-incubator/kvbench/internal/storage/rocksdb"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func openStore(cfg *opts.Config, lgr *zap.Logger, statsCli stats.Client, promRegistry prometheus.Registerer) (storage.KVStore, error) {
	if err := storage.EnsureFolder(cfg.DbFolder); err != nil {
		return nil, err
	}
	switch cfg.DbEngine {
	case opts.LevelDB:
		return openLevelDB(cfg, lgr, statsCli, promRegistry)
	case opts.RocksDB:
		return openRocksDB(cfg, lgr, statsCli, promRegistry)
	case opts.Badger:
		return openBadger(cfg, lgr, statsCli, promRegistry)
	default:
		return nil, fmt.Errorf("unknown storage engine: %s", cfg.DbEngine)
	}
}

func openLevelDB(cfg *opts.Config, lgr *zap.Logger, statsCli stats.Client, promRegistry prometheus.Registerer) (storage.KVStore, error) {
	dbOpts := []leveldb.DBOption{
		leveldb.WithLogger(lgr),
		leveldb.WithStats(statsCli),
		leveldb.WithPromStats(promRegistry),
		leveldb.WithLevelDBConfig(cfg.DbEngineIni),
	}
	if cfg.BlockCacheSize > 0 {
		dbOpts = append(dbOpts, leveldb.WithCacheSize(cfg.BlockCacheSize))
	}
	kvs, err := leveldb.OpenDB(cfg.DbFolder, dbOpts...)
	if err != nil {
		return nil, err
	}
	return kvs, nil
}

func openRocksDB(cfg *opts.Config, lgr *zap.Logger, statsCli stats.Client, promRegistry prometheus.Registerer) (storage.KVStore, error) {
	dbOpts := []rocksdb.DBOption{
		rocksdb.WithLogger(lgr),
		rocksdb.WithStats(statsCli),
		rocksdb.WithPromStats(promRegistry),
		rocksdb.WithRocksDBConfig(cfg.DbEngineIni),
	}
	// a zero size would disable the block cache
	if cfg.BlockCacheSize > 0 {
		dbOpts = append(dbOpts, rocksdb.WithCacheSize(cfg.BlockCacheSize))
	}
	kvs, err := rocksdb.OpenDB(cfg.DbFolder, dbOpts...)
	if err != nil {
		return nil, err
	}
	return kvs, nil
}

func openBadger(cfg *opts.Config, lgr *zap.Logger, statsCli stats.Client, promRegistry prometheus.Registerer) (storage.KVStore, error) {
	dbOpts := []badger.DBOption{
		badger.WithLogger(lgr),
		badger.WithStats(statsCli),
		badger.WithPromStats(promRegistry),
		badger.WithBadgerConfig(cfg.DbEngineIni),
	}
	if cfg.BlockCacheSize > 0 {
		dbOpts = append(dbOpts, badger.WithCacheSize(cfg.BlockCacheSize))
	}
	kvs, err := badger.OpenDB(cfg.DbFolder, dbOpts...)
	if err != nil {
		return nil, err
	}
	return kvs, nil
}
