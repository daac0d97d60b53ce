// Package exporter writes functions from any store into a standalone SQLite
// file that another installation can import.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/magick-mcp/magick-mcp/internal/db"
	"github.com/magick-mcp/magick-mcp/internal/registry"
)

// ErrExists is returned when the destination file already exists.
var ErrExists = errors.New("destination already exists")

// ExportFunctions copies the named functions, or all of them when names is
// empty, from src into a new SQLite file at dstPath. Insertion order is kept.
// It returns the number of functions written.
func ExportFunctions(ctx context.Context, src registry.Store, dstPath string, names []string) (int, error) {
	if _, err := os.Stat(dstPath); err == nil {
		return 0, fmt.Errorf("%s: %w", dstPath, ErrExists)
	}

	var fns []registry.Function
	if len(names) == 0 {
		all, err := src.List(ctx)
		if err != nil {
			return 0, fmt.Errorf("list functions: %w", err)
		}
		fns = all
	} else {
		for _, n := range names {
			f, err := src.Get(ctx, n)
			if err != nil {
				return 0, err
			}
			fns = append(fns, f)
		}
	}

	conn, err := db.Open(dstPath)
	if err != nil {
		return 0, fmt.Errorf("create export db: %w", err)
	}
	dst := registry.NewSQLiteStore(conn)
	defer func() { _ = dst.Close() }()

	for _, f := range fns {
		if err := dst.Save(ctx, f); err != nil {
			return 0, fmt.Errorf("export %q: %w", f.Name, err)
		}
	}
	return len(fns), nil
}
