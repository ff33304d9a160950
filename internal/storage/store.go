package storage

import (
	"errors"
	"io"
	"os"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// A KVStore represents the embedded key value engine that the
// benchmark workloads are issued against.
type KVStore interface {
	io.Closer
	// Put stores the value against the key. Whether the write is
	// synced to disk is decided when the store is opened.
	Put(key []byte, value []byte) error
	// Get returns a copy of the value stored against the key, or
	// ErrNotFound. Any buffer owned by the engine is released
	// before Get returns.
	Get(key []byte) ([]byte, error)
}

// EnsureFolder creates the given folder and its parents if they
// do not exist yet.
func EnsureFolder(folder string) error {
	return os.MkdirAll(folder, 0755)
}
