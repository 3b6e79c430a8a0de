// Package store provides the string key-value storage the workbench
// document is persisted to.
package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// KV stores whole string values under string keys. Writes replace the
// previous value; there are no partial updates.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Close() error
}

// Backend names a KV implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendFile, BackendSQLite, BackendMemory:
		return b, nil
	}
	return "", fmt.Errorf("unknown storage backend %q (want file, sqlite or memory)", s)
}

// Open creates the KV for a backend rooted at dir.
func Open(backend Backend, dir string) (KV, error) {
	switch backend {
	case BackendFile:
		return NewFileKV(dir)
	case BackendSQLite:
		return NewSQLiteKV(SQLitePath(dir))
	case BackendMemory:
		return NewMemoryKV(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}
