package opts

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	flag "github.com/spf13/pflag"
)

func TestDefaults(t *testing.T) {
	cfg, args, err := NewLoader("kvbench").Load([]string{"write"})
	if err != nil {
		t.Fatalf("Unable to load configuration. Error: %v", err)
	}
	if cfg.DbEngine != LevelDB || cfg.DbFolder != "testdb" || cfg.NumEntries != 5000000 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.BlockCacheSize != 0 || cfg.Verbose || cfg.LogFile != "" || cfg.MetricsOut != "" {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if len(args) != 1 || args[0] != "write" {
		t.Errorf("Expected positional args [write], got %q", args)
	}
}

func TestFlagsAndPositionalArgs(t *testing.T) {
	cfg, args, err := NewLoader("kvbench").Load([]string{
		"--db-engine", "Badger", "--db-folder", "/tmp/kvb", "--num-entries", "64",
		"--block-cache-size", "1048576", "--verbose", "read", "25",
	})
	if err != nil {
		t.Fatalf("Unable to load configuration. Error: %v", err)
	}
	if cfg.DbEngine != Badger {
		t.Errorf("Expected engine %s, got %s", Badger, cfg.DbEngine)
	}
	if cfg.DbFolder != "/tmp/kvb" || cfg.NumEntries != 64 || cfg.BlockCacheSize != 1<<20 || !cfg.Verbose {
		t.Errorf("Flags not applied: %+v", cfg)
	}
	if len(args) != 2 || args[0] != "read" || args[1] != "25" {
		t.Errorf("Expected positional args [read 25], got %q", args)
	}
}

func TestEnvOverrides(t *testing.T) {
	os.Setenv("KVBENCH_DB_FOLDER", "/tmp/from-env")
	os.Setenv("KVBENCH_DB_ENGINE", "rocksdb")
	defer os.Unsetenv("KVBENCH_DB_FOLDER")
	defer os.Unsetenv("KVBENCH_DB_ENGINE")

	cfg, _, err := NewLoader("kvbench").Load([]string{"--db-engine", "leveldb"})
	if err != nil {
		t.Fatalf("Unable to load configuration. Error: %v", err)
	}
	if cfg.DbFolder != "/tmp/from-env" {
		t.Errorf("Expected DB folder from environment, got %s", cfg.DbFolder)
	}
	if cfg.DbEngine != LevelDB {
		t.Errorf("Expected explicit flag to win over environment, got %s", cfg.DbEngine)
	}
}

func TestConfigFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "kvbench_opts")
	if err != nil {
		t.Fatalf("Unable to create temp folder. Error: %v", err)
	}
	defer os.RemoveAll(dir)

	cfgFile := filepath.Join(dir, "kvbench.yaml")
	content := "db-engine: rocksdb\ndb-folder: /data/kvbench\nstatsd-addr: localhost:8125\n"
	if err := ioutil.WriteFile(cfgFile, []byte(content), 0644); err != nil {
		t.Fatalf("Unable to write config file. Error: %v", err)
	}

	cfg, _, err := NewLoader("kvbench").Load([]string{"--config", cfgFile, "--db-folder", "/tmp/override"})
	if err != nil {
		t.Fatalf("Unable to load configuration. Error: %v", err)
	}
	if cfg.DbEngine != RocksDB || cfg.StatsdAddr != "localhost:8125" {
		t.Errorf("Config file not applied: %+v", cfg)
	}
	if cfg.DbFolder != "/tmp/override" {
		t.Errorf("Expected explicit flag to win over config file, got %s", cfg.DbFolder)
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, _, err := NewLoader("kvbench").Load([]string{"--config", "/no/such/kvbench.yaml"}); err == nil {
		t.Error("Expected an error for a missing config file")
	}
}

func TestValidate(t *testing.T) {
	testCases := map[string][]string{
		"unknown engine":    {"--db-engine", "sqlite"},
		"bad statsd addr":   {"--statsd-addr", "localhost"},
		"missing ini file":  {"--db-engine-ini", "/no/such/engine.ini"},
		"zero entries":      {"--num-entries", "0"},
		"empty db folder":   {"--db-folder", ""},
		"unknown flag":      {"--no-such-flag"},
		"malformed integer": {"--block-cache-size", "lots"},
	}
	for name, args := range testCases {
		if _, _, err := NewLoader("kvbench").Load(args); err == nil {
			t.Errorf("Expected an error for %s", name)
		}
	}
}

func TestArgsAfterModeStayPositional(t *testing.T) {
	for _, count := range []string{"-5", "-1", "--x"} {
		cfg, args, err := NewLoader("kvbench").Load([]string{"--db-folder", "/tmp/kvb", "read", count})
		if err != nil {
			t.Fatalf("Unable to load configuration for read count %q. Error: %v", count, err)
		}
		if cfg.DbFolder != "/tmp/kvb" {
			t.Errorf("Expected flags before the mode to apply, got %s", cfg.DbFolder)
		}
		if len(args) != 2 || args[0] != "read" || args[1] != count {
			t.Errorf("Expected positional args [read %s], got %q", count, args)
		}
	}
}

func TestHelpRequested(t *testing.T) {
	ldr := NewLoader("kvbench")
	ldr.fs.SetOutput(ioutil.Discard)
	if _, _, err := ldr.Load([]string{"--help"}); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("Expected flag.ErrHelp, got %v", err)
	}
}
