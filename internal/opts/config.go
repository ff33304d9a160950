package opts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix is prepended to the upper cased, underscore separated
// name of every setting when it is looked up in the environment,
// e.g. KVBENCH_DB_ENGINE.
const EnvPrefix = "KVBENCH"

const (
	LevelDB = "leveldb"
	RocksDB = "rocksdb"
	Badger  = "badger"

	defaultNumEntries uint32 = 5000000
)

type Config struct {
	// Storage configuration
	DbEngine       string `mapstructure:"db-engine" desc:"Underlying DB engine for storing data - leveldb|rocksdb|badger"`
	DbFolder       string `mapstructure:"db-folder" desc:"DB folder path for storing data files"`
	DbEngineIni    string `mapstructure:"db-engine-ini" desc:"An .ini file for configuring the underlying storage engine"`
	BlockCacheSize uint64 `mapstructure:"block-cache-size" desc:"Amount of cache (in bytes) to set aside for data blocks. A value of 0 keeps the engine default."`

	// Observability
	StatsdAddr string `mapstructure:"statsd-addr" desc:"StatsD service address in host:port format"`
	LogFile    string `mapstructure:"log-file" desc:"File for diagnostic logs eg., stderr, /tmp/kvbench.log. Nothing is logged when empty."`
	Verbose    bool   `mapstructure:"verbose" desc:"Enable debug logging"`
	MetricsOut string `mapstructure:"metrics-out" desc:"File to which latency percentiles are written as JSON after the run"`

	// Workload
	NumEntries uint32 `mapstructure:"num-entries" desc:"Number of entries written, and the keyspace sampled by reads"`
}

// Loader resolves a Config from flags, an optional YAML config file
// and KVBENCH_ prefixed environment variables. Explicitly passed
// flags win over the environment, which wins over the config file.
type Loader struct {
	fs      *flag.FlagSet
	v       *viper.Viper
	cfgFile string
}

func NewLoader(name string) *Loader {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	// arguments after the mode are positional even when they look
	// like flags, e.g. a negative read count
	fs.SetInterspersed(false)
	ldr := &Loader{fs: fs, v: viper.New()}

	fs.StringVar(&ldr.cfgFile, "config", "", "YAML config file (optional)")
	fs.String("db-engine", LevelDB, "Underlying DB engine for storing data - leveldb|rocksdb|badger")
	fs.String("db-folder", "testdb", "DB folder path for storing data files")
	fs.String("db-engine-ini", "", "An .ini file for configuring the underlying storage engine")
	fs.Uint64("block-cache-size", 0, "Amount of cache (in bytes) to set aside for data blocks. A value of 0 keeps the engine default.")
	fs.String("statsd-addr", "", "StatsD service address in host:port format")
	fs.String("log-file", "", "File for diagnostic logs eg., stderr, /tmp/kvbench.log")
	fs.Bool("verbose", false, "Enable debug logging")
	fs.String("metrics-out", "", "File to which latency percentiles are written as JSON after the run")
	fs.Uint32("num-entries", defaultNumEntries, "Number of entries written, and the keyspace sampled by reads")
	fs.MarkHidden("num-entries")
	return ldr
}

// Load parses args and returns the resulting configuration along
// with the remaining positional arguments. Asking for help prints
// the usage and returns flag.ErrHelp.
func (ldr *Loader) Load(args []string) (*Config, []string, error) {
	if err := ldr.fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if err := ldr.loadConfigFile(); err != nil {
		return nil, nil, err
	}
	ldr.v.SetEnvPrefix(EnvPrefix)
	ldr.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	ldr.v.AutomaticEnv()
	if err := ldr.v.BindPFlags(ldr.fs); err != nil {
		return nil, nil, err
	}

	cfg := &Config{}
	if err := ldr.v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("unable to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, ldr.fs.Args(), nil
}

func (ldr *Loader) loadConfigFile() error {
	if ldr.cfgFile == "" {
		return nil
	}
	absPath, err := filepath.Abs(ldr.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to convert config file %s to an absolute path: %w", ldr.cfgFile, err)
	}
	ldr.v.SetConfigFile(absPath)
	if err := ldr.v.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to read config file %s: %w", absPath, err)
	}
	return nil
}

// Validate checks the settings that cannot be checked by the
// flag parser alone.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DbEngine) {
	case LevelDB, RocksDB, Badger:
		c.DbEngine = strings.ToLower(c.DbEngine)
	default:
		return fmt.Errorf("given storage engine: %s is invalid, must be one of leveldb|rocksdb|badger", c.DbEngine)
	}
	if c.DbFolder == "" {
		return errors.New("a DB folder is required")
	}
	if c.StatsdAddr != "" && strings.IndexRune(c.StatsdAddr, ':') < 0 {
		return fmt.Errorf("given StatsD address: %s is invalid, must be in host:port format", c.StatsdAddr)
	}
	if c.DbEngineIni != "" {
		if _, err := os.Stat(c.DbEngineIni); err != nil && os.IsNotExist(err) {
			return fmt.Errorf("given storage configuration file: %s does not exist", c.DbEngineIni)
		}
	}
	if c.NumEntries == 0 {
		return errors.New("the number of entries must be positive")
	}
	return nil
}

// Print logs every tagged setting along with its description.
func (c *Config) Print(lgr *zap.Logger) {
	f := reflect.TypeOf(*c)
	v := reflect.ValueOf(*c)
	for i := 0; i < v.NumField(); i++ {
		tag := f.Field(i).Tag
		name := tag.Get("mapstructure")
		if name == "" {
			continue
		}
		lgr.Info("Setting", zap.String("name", name), zap.String("desc", tag.Get("desc")), zap.Any("value", v.Field(i).Interface()))
	}
}
