package locate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events a database rebuild produces.
const DefaultDebounce = 500 * time.Millisecond

// ErrNoDatabase is returned by Watch when no database file can be found.
var ErrNoDatabase = errors.New("locate database not found")

// defaultDatabases are the usual locations of plocate, mlocate and
// findutils databases, tried in order.
var defaultDatabases = []string{
	"/var/lib/plocate/plocate.db",
	"/var/lib/mlocate/mlocate.db",
	"/var/cache/locate/locatedb",
}

// DatabasePath returns the configured database, or the first default one
// that exists. It returns "" when none is found.
func (c *Catalog) DatabasePath() string {
	if c.opts.Database != "" {
		return c.opts.Database
	}
	for _, p := range defaultDatabases {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Watch calls fn after the database file was rewritten, until ctx is done.
// The parent directory is watched since updatedb replaces the file by
// renaming a temporary one over it.
func (c *Catalog) Watch(ctx context.Context, fn func()) error {
	return c.watch(ctx, c.DatabasePath(), DefaultDebounce, fn)
}

func (c *Catalog) watch(ctx context.Context, db string, debounce time.Duration, fn func()) error {
	if db == "" {
		return ErrNoDatabase
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(db)); err != nil {
		_ = w.Close()
		return err
	}

	c.logger.Debug("watching index", "database", db)
	go c.watchLoop(ctx, w, filepath.Clean(db), debounce, fn)
	return nil
}

func (c *Catalog) watchLoop(ctx context.Context, w *fsnotify.Watcher, db string, debounce time.Duration, fn func()) {
	defer w.Close()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != db {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			c.logger.Warn("index watcher error", "error", err)

		case <-timer.C:
			c.logger.Info("index changed", "database", db)
			fn()
		}
	}
}
