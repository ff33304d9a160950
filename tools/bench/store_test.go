package bench

import (
	"errors"

	"github.com/flipkart-incubator/kvbench/internal/storage"
)

var errInjected = errors.New("injected failure")

// recordingStore is an in-memory KVStore that records every call
// and can be told to fail.
type recordingStore struct {
	data       map[string][]byte
	puts, gets [][]byte
	failPutAt  int
	numGets    int
	failGet    bool
	alwaysHit  bool
	closed     bool
}

func newRecordingStore() *recordingStore {
	return &recordingStore{data: make(map[string][]byte), failPutAt: -1}
}

func (rs *recordingStore) Put(key []byte, value []byte) error {
	rs.puts = append(rs.puts, key)
	if rs.failPutAt >= 0 && len(rs.puts) > rs.failPutAt {
		return errInjected
	}
	rs.data[string(key)] = value
	return nil
}

func (rs *recordingStore) Get(key []byte) ([]byte, error) {
	rs.numGets++
	// hit-only stores skip recording to keep long runs cheap
	if !rs.alwaysHit {
		rs.gets = append(rs.gets, key)
	}
	if rs.failGet {
		return nil, errInjected
	}
	if rs.alwaysHit {
		return []byte("hit\x00"), nil
	}
	if value, ok := rs.data[string(key)]; ok {
		return value, nil
	}
	return nil, storage.ErrNotFound
}

func (rs *recordingStore) Close() error {
	rs.closed = true
	return nil
}
