package badger

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/flipkart-incubator/kvbench/internal/stats"
	"github.com/flipkart-incubator/kvbench/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	baseDir string
	store   DB
)

func TestMain(m *testing.M) {
	dir, err := ioutil.TempDir("", "badger_storage_test")
	if err != nil {
		panic(err)
	}
	baseDir = dir
	if kvs, err := OpenDB(filepath.Join(dir, "testdb"), WithLogger(zap.NewNop())); err != nil {
		panic(err)
	} else {
		store = kvs
		res := m.Run()
		store.Close()
		os.RemoveAll(dir)
		os.Exit(res)
	}
}

func TestPutAndGet(t *testing.T) {
	numKeys := 10
	for i := 1; i <= numKeys; i++ {
		key, value := fmt.Sprintf("K%d", i), fmt.Sprintf("V%d", i)
		if err := store.Put([]byte(key), []byte(value)); err != nil {
			t.Fatalf("Unable to PUT. Key: %s, Value: %s, Error: %v", key, value, err)
		}
	}

	for i := 1; i <= numKeys; i++ {
		key, expectedValue := fmt.Sprintf("K%d", i), fmt.Sprintf("V%d", i)
		if value, err := store.Get([]byte(key)); err != nil {
			t.Fatalf("Unable to GET. Key: %s, Error: %v", key, err)
		} else if string(value) != expectedValue {
			t.Errorf("GET mismatch. Key: %s, Expected Value: %s, Actual Value: %s", key, expectedValue, value)
		}
	}
}

func TestFixedWidthBinaryKeys(t *testing.T) {
	key, value := make([]byte, 32), []byte("bad\x00")
	if err := store.Put(key, value); err != nil {
		t.Fatalf("Unable to PUT all zero key. Error: %v", err)
	}
	if actual, err := store.Get(key); err != nil {
		t.Fatalf("Unable to GET all zero key. Error: %v", err)
	} else if string(actual) != string(value) {
		t.Errorf("GET mismatch. Expected Value: %q, Actual Value: %q", value, actual)
	}
}

func TestMissingKey(t *testing.T) {
	if value, err := store.Get([]byte("NoSuchKey")); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got value: %q, error: %v", value, err)
	}
}

func TestInMemPutAndGet(t *testing.T) {
	kvs, err := OpenDB("", WithInMemory())
	if err != nil {
		t.Fatalf("Unable to open Badger with in-memory mode. Error: %v", err)
	}
	defer kvs.Close()
	numKeys := 50
	for i := 0; i < numKeys; i++ {
		key, value := fmt.Sprintf("brKey%d", i), fmt.Sprintf("brVal%d", i)
		if err := kvs.Put([]byte(key), []byte(value)); err != nil {
			t.Fatalf("Unable to PUT. Key: %s, Error: %v", key, err)
		}
	}
	for i := 0; i < numKeys; i++ {
		key, expectedValue := fmt.Sprintf("brKey%d", i), fmt.Sprintf("brVal%d", i)
		if value, err := kvs.Get([]byte(key)); err != nil || string(value) != expectedValue {
			t.Errorf("GET mismatch. Key: %s, Expected Value: %s, Actual Value: %s, Error: %v", key, expectedValue, value, err)
		}
	}
}

func TestINIFileOption(t *testing.T) {
	iniFile := filepath.Join(baseDir, "badger.ini")
	conf := "NumMemtables = 3\nNumLevelZeroTables = 4\n"
	if err := ioutil.WriteFile(iniFile, []byte(conf), 0644); err != nil {
		t.Fatal(err)
	}
	kvs, err := OpenDB(filepath.Join(baseDir, "bdgr_ini"), WithBadgerConfig(iniFile))
	if err != nil {
		t.Fatalf("Unable to open Badger with ini file. Error: %v", err)
	}
	defer kvs.Close()
	if opts := kvs.(*badgerDB).opts.opts; opts.NumMemtables != 3 || opts.NumLevelZeroTables != 4 {
		t.Errorf("Expected ini settings to be applied, got NumMemtables: %d, NumLevelZeroTables: %d",
			opts.NumMemtables, opts.NumLevelZeroTables)
	}
}

func TestINIFileMissing(t *testing.T) {
	if _, err := OpenDB(filepath.Join(baseDir, "bdgr_noini"), WithBadgerConfig("/no/such/badger.ini")); err == nil {
		t.Errorf("Expected an error for a missing ini file")
	}
}

func TestPromStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	kvs, err := OpenDB("", WithInMemory(), WithPromStats(reg))
	if err != nil {
		t.Fatalf("Unable to open Badger. Error: %v", err)
	}
	defer kvs.Close()

	kvs.Put([]byte("k"), []byte("v"))
	kvs.Get([]byte("k"))
	kvs.Get([]byte("missing"))

	metrics, err := stats.GetMetrics(reg)
	if err != nil {
		t.Fatalf("Unable to gather metrics. Error: %v", err)
	}
	if cnt := metrics.StorageOpsCount["badger.put"]; cnt != 1 {
		t.Errorf("Expected 1 put, got %d", cnt)
	}
	if cnt := metrics.StorageOpsCount["badger.get"]; cnt != 2 {
		t.Errorf("Expected 2 gets, got %d", cnt)
	}
}

func TestNilLoggerFallsBackToNop(t *testing.T) {
	kvs, err := OpenDB("", WithInMemory(), WithLogger(nil))
	if err != nil {
		t.Fatalf("Unable to open Badger with a nil logger. Error: %v", err)
	}
	defer kvs.Close()
	if bdb := kvs.(*badgerDB); bdb.opts.lgr == nil {
		t.Error("Expected a no-op logger in place of a nil logger")
	}
	if err := kvs.Put([]byte("brKey"), []byte("brVal")); err != nil {
		t.Errorf("Unable to PUT. Error: %v", err)
	}
}
