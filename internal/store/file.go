package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var keyReplacer = strings.NewReplacer(":", "-", "/", "-", "\\", "-")

// FileKV stores each key as a JSON file in a directory. Writes go through a
// temp file + rename so a reader never sees a partial value.
type FileKV struct {
	dir string

	mu      sync.Mutex
	written map[string]string // last value this process wrote per key
}

// NewFileKV creates a file store rooted at dir, creating it if needed.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileKV{dir: dir, written: make(map[string]string)}, nil
}

// Dir returns the directory holding the files.
func (f *FileKV) Dir() string {
	return f.dir
}

// Path returns the file a key is stored in.
// The key "workbench:doc" is stored as workbench-doc.json.
func (f *FileKV) Path(key string) string {
	return filepath.Join(f.dir, keyReplacer.Replace(key)+".json")
}

// Get reads the value stored for key.
func (f *FileKV) Get(key string) (string, error) {
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), nil
}

// Set atomically replaces the value stored for key.
func (f *FileKV) Set(key, value string) error {
	path := f.Path(key)
	tmpPath := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.WriteFile(tmpPath, []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Rename temp file over the value (atomic operation)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	f.written[key] = value
	return nil
}

// Close is a no-op; files are not held open.
func (f *FileKV) Close() error {
	return nil
}
