package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher is implemented by stores that can report values changed by
// another process.
type Watcher interface {
	Watch(ctx context.Context, key string) (<-chan struct{}, error)
}

// Watch signals on the returned channel whenever the file for key changes to
// a value this process did not write. Signals are coalesced: a pending
// signal is not duplicated. The channel is closed when ctx is done.
func (f *FileKV) Watch(ctx context.Context, key string) (<-chan struct{}, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: atomic writes replace the file, which would drop
	// a watch on the file itself.
	if err := fsw.Add(f.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", f.dir, err)
	}

	target := filepath.Clean(f.Path(key))
	changes := make(chan struct{}, 1)

	go func() {
		defer close(changes)
		defer fsw.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if !f.changedElsewhere(key) {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			case _, ok := <-fsw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return changes, nil
}

// changedElsewhere holds the write lock so a concurrent Set can't land
// between reading the file and comparing it.
func (f *FileKV) changedElsewhere(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, err := f.Get(key)
	if err != nil {
		return false
	}
	last, ok := f.written[key]
	return !ok || last != value
}
