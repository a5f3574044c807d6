package favorites

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 100 * time.Millisecond

// FileCache stores the favorite set as a JSON array file.
//
// Writes go through a temporary file and a rename so readers never observe a partial array.
// Several client processes may share one file; [FileCache.Watch] reports their writes.
type FileCache struct {
	path     string
	logger   *log.Logger
	debounce time.Duration
}

// NewFileCache creates a [FileCache] at path.
func NewFileCache(path string, logger *log.Logger) *FileCache {
	if logger == nil {
		logger = discardLogger()
	}
	return &FileCache{path: path, logger: logger, debounce: defaultDebounce}
}

// Path returns the file location.
func (c *FileCache) Path() string { return c.path }

func (c *FileCache) Read(ctx context.Context) Set {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Debug("favorite file unreadable", "path", c.path, "err", err)
		}
		return NewSet()
	}
	return decodeOrEmpty(c.logger, c.path, data)
}

func (c *FileCache) Write(ctx context.Context, s Set) error {
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("failed to encode favorite set: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create favorites directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".favorites-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("failed to replace favorites file: %w", err)
	}
	return nil
}

// Watch watches the file's directory and calls fn, debounced, whenever the file is created, written, renamed, or removed.
func (c *FileCache) Watch(ctx context.Context, fn func()) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create favorites directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// the file itself is replaced on every write, so watch its directory
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(c.path)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(c.debounce, func() {
			if ctx.Err() == nil {
				fn()
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				c.logger.Debug("favorite file changed", "op", event.Op.String())
				schedule()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("favorite file watcher error", "err", err)
		}
	}
}
