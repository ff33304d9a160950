package badger

import (
	"github.com/flipkart-incubator/kvbench/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
)

// metricsCollector exposes the Badger expvar metrics through prometheus.
func (bdb *badgerDB) metricsCollector() {
	bdb.collector = prometheus.NewExpvarCollector(map[string]*prometheus.Desc{
		"badger_v2_disk_reads_total": prometheus.NewDesc(
			prometheus.BuildFQName(stats.Namespace, "badger", "disk_reads_total"),
			"Number of cumulative reads by Badger",
			nil, nil,
		),
		"badger_v2_disk_writes_total": prometheus.NewDesc(
			prometheus.BuildFQName(stats.Namespace, "badger", "disk_writes_total"),
			"Number of cumulative writes by Badger",
			nil, nil,
		),
		"badger_v2_read_bytes": prometheus.NewDesc(
			prometheus.BuildFQName(stats.Namespace, "badger", "read_bytes"),
			"Number of cumulative bytes read by Badger",
			nil, nil,
		),
		"badger_v2_written_bytes": prometheus.NewDesc(
			prometheus.BuildFQName(stats.Namespace, "badger", "written_bytes"),
			"Number of cumulative bytes written by Badger",
			nil, nil,
		),
		"badger_v2_gets_total": prometheus.NewDesc(
			prometheus.BuildFQName(stats.Namespace, "badger", "gets_total"),
			"Total number of gets",
			nil, nil,
		),
		"badger_v2_puts_total": prometheus.NewDesc(
			prometheus.BuildFQName(stats.Namespace, "badger", "puts_total"),
			"Total number of puts",
			nil, nil,
		),
		"badger_v2_memtable_gets_total": prometheus.NewDesc(
			prometheus.BuildFQName(stats.Namespace, "badger", "memtable_gets_total"),
			"Total number of memtable gets",
			nil, nil,
		),
		"badger_v2_lsm_size_bytes": prometheus.NewDesc(
			prometheus.BuildFQName(stats.Namespace, "badger", "lsm_size_bytes"),
			"Size of the LSM in bytes",
			[]string{"dir"}, nil,
		),
		"badger_v2_vlog_size_bytes": prometheus.NewDesc(
			prometheus.BuildFQName(stats.Namespace, "badger", "vlog_size_bytes"),
			"Size of the value log in bytes",
			[]string{"dir"}, nil,
		),
	})
	bdb.opts.promRegistry.MustRegister(bdb.collector)
}

func (bdb *badgerDB) unRegisterMetricsCollector() {
	bdb.opts.promRegistry.Unregister(bdb.collector)
	bdb.stat.Unregister(bdb.opts.promRegistry)
}
