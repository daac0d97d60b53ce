package registry

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/magick-mcp/magick-mcp/internal/config"
	"github.com/magick-mcp/magick-mcp/internal/db"
)

// Store is the durable collection of functions. Implementations are safe for
// concurrent use: writes are serialized, reads may overlap each other and
// never observe a partially written function.
type Store interface {
	// Save adds f. It fails with ErrDuplicateName if f.Name exists.
	Save(ctx context.Context, f Function) error
	// Get returns the named function or ErrNotFound.
	Get(ctx context.Context, name string) (Function, error)
	// List returns every function in insertion order.
	List(ctx context.Context) ([]Function, error)
	// Delete removes the named function or returns ErrNotFound.
	Delete(ctx context.Context, name string) error
	Close() error
}

// Open returns the Store selected by cfg.Store.Backend.
func Open(cfg config.Config, log zerolog.Logger) (Store, error) {
	path, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	switch cfg.Store.Backend {
	case config.BackendSQLite, "":
		conn, err := db.Open(path)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(conn), nil
	case config.BackendBadger:
		return OpenBadger(path, log)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
