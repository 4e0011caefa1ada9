// Package catalog is the backend-agnostic entry point for search sessions.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Cyclone1070/locatecat/internal/catalog/locate"
	"github.com/Cyclone1070/locatecat/internal/session"
)

// BackendLocate is the locate(1) backend.
const BackendLocate = "locate"

// Catalog creates search sessions against one backend. It holds no
// per-query state; all methods may be called any number of times.
type Catalog interface {
	// NewSearch never fails; the backend is first used on Append.
	NewSearch(cb session.Callback) *session.Session
	NewFeed() *session.Feed
	// IsAvailable is a short synchronous probe. When it is false the whole
	// backend is unusable and search should be disabled.
	IsAvailable(ctx context.Context) bool
}

// Updater is implemented by catalogs whose index can be rebuilt on demand.
type Updater interface {
	// Update starts a rebuild and returns without waiting for it.
	Update(ctx context.Context) error
	// UpdateWait rebuilds and waits for the outcome.
	UpdateWait(ctx context.Context) error
}

// Watcher is implemented by catalogs that can report index rebuilds.
type Watcher interface {
	Watch(ctx context.Context, fn func()) error
}

var (
	_ Catalog = (*locate.Catalog)(nil)
	_ Updater = (*locate.Catalog)(nil)
	_ Watcher = (*locate.Catalog)(nil)
)

// UnknownBackendError is returned by Open for an unsupported backend name.
type UnknownBackendError struct {
	Name string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown catalog backend %q", e.Name)
}

func (e *UnknownBackendError) InvalidInput() bool { return true }

// Open creates the catalog for backend, decoding its free-form options.
// An empty backend selects locate.
func Open(backend string, options map[string]any, sessOpts session.Options, logger *slog.Logger) (Catalog, error) {
	switch backend {
	case "", BackendLocate:
		opts, err := locate.DecodeOptions(options)
		if err != nil {
			return nil, err
		}
		return locate.New(opts, sessOpts, logger)
	default:
		return nil, &UnknownBackendError{Name: backend}
	}
}
