package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Compile-time interface satisfaction checks.
var (
	_ Store     = (*FSStore)(nil)
	_ Watchable = (*FSStore)(nil)
)

// FSStore keeps each entry as one file in a caller-supplied directory. It is
// the cross-process cache backend: workers sharing only the directory can
// hand artifacts to each other. Writes go to a temp file in the same
// directory followed by a rename, so readers never see a partial entry.
type FSStore struct {
	dir string
}

// NewFSStore opens (creating if needed) the cache directory.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

// Dir returns the cache directory path.
func (s *FSStore) Dir() string {
	return s.dir
}

// Put writes an entry atomically.
func (s *FSStore) Put(_ context.Context, key Key, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, key.Filename()+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close entry %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, key.Filename())); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish entry %s: %w", key, err)
	}
	return nil
}

// Get reads an entry, or ErrNotFound if it has not been published yet.
func (s *FSStore) Get(_ context.Context, key Key) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, key.Filename()))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", key, err)
	}
	return data, nil
}

// Close is a no-op; the directory is owned by the caller.
func (s *FSStore) Close() error {
	return nil
}

// Watch implements Watchable by watching the cache directory for the key's
// file to appear. Await still re-checks on its poll interval, so a missed
// event degrades to polling rather than a hang.
func (s *FSStore) Watch(key Key) (<-chan struct{}, func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("start cache watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return nil, nil, fmt.Errorf("watch cache dir: %w", err)
	}

	target := filepath.Join(s.dir, key.Filename())
	wake := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		defer w.Close()
		for {
			select {
			case <-done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name == target {
					select {
					case wake <- struct{}{}:
					default:
					}
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
				// Watcher errors are non-fatal; polling covers the gap.
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() { close(done) })
	}
	return wake, stop, nil
}
