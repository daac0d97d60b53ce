// Package importer loads functions from an exported SQLite file into the
// active store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/magick-mcp/magick-mcp/internal/db"
	"github.com/magick-mcp/magick-mcp/internal/nameutil"
	"github.com/magick-mcp/magick-mcp/internal/registry"
)

// OnConflict decides what happens when an imported name already exists.
type OnConflict int

const (
	// Rename imports under "<name>-import-N" with the first free N.
	Rename OnConflict = iota
	// Skip leaves the existing function alone.
	Skip
)

// Report summarizes an import. Renamed maps original names to the names
// they were saved under.
type Report struct {
	Imported []string
	Skipped  []string
	Renamed  map[string]string
}

// ImportFunctions saves every function found in srcPath into dst, in the
// order they were saved in the source. Existing functions are never
// modified. Names are normalized and every function is validated before
// anything is written, so an invalid source imports nothing.
func ImportFunctions(ctx context.Context, dst registry.Store, srcPath string, policy OnConflict) (Report, error) {
	rep := Report{Imported: []string{}, Skipped: []string{}, Renamed: map[string]string{}}
	if _, err := os.Stat(srcPath); err != nil {
		return rep, fmt.Errorf("open source: %w", err)
	}
	conn, err := db.Open(srcPath)
	if err != nil {
		return rep, fmt.Errorf("open source: %w", err)
	}
	src := registry.NewSQLiteStore(conn)
	defer func() { _ = src.Close() }()

	fns, err := src.List(ctx)
	if err != nil {
		return rep, fmt.Errorf("read source: %w", err)
	}
	origs := make([]string, len(fns))
	for i := range fns {
		origs[i] = fns[i].Name
		fns[i].Name, _ = nameutil.Normalize(fns[i].Name)
		if err := registry.Validate(fns[i]); err != nil {
			return rep, fmt.Errorf("import %q: %w", origs[i], err)
		}
	}
	for i, f := range fns {
		name, err := saveUnique(ctx, dst, f, policy)
		switch {
		case err != nil:
			return rep, fmt.Errorf("import %q: %w", origs[i], err)
		case name == "":
			rep.Skipped = append(rep.Skipped, origs[i])
		default:
			rep.Imported = append(rep.Imported, name)
			if name != origs[i] {
				rep.Renamed[origs[i]] = name
			}
		}
	}
	return rep, nil
}

// saveUnique saves f, retrying under suffixed names on conflict. It returns
// the name used, or "" when the function was skipped.
func saveUnique(ctx context.Context, dst registry.Store, f registry.Function, policy OnConflict) (string, error) {
	orig := f.Name
	for i := 1; ; i++ {
		err := dst.Save(ctx, f)
		if err == nil {
			return f.Name, nil
		}
		if !errors.Is(err, registry.ErrDuplicateName) {
			return "", err
		}
		if policy == Skip {
			return "", nil
		}
		f.Name = fmt.Sprintf("%s-import-%d", orig, i)
	}
}
