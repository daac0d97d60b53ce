package importer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/magick-mcp/magick-mcp/internal/db"
	"github.com/magick-mcp/magick-mcp/internal/exporter"
	"github.com/magick-mcp/magick-mcp/internal/registry"
)

func sqliteStore(t *testing.T, path string) registry.Store {
	t.Helper()
	conn, err := db.Open(path)
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	s := registry.NewSQLiteStore(conn)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func save(t *testing.T, s registry.Store, name string, cmd ...string) {
	t.Helper()
	if err := s.Save(context.Background(), registry.Function{Name: name, Commands: [][]string{cmd}}); err != nil {
		t.Fatalf("Save %s: %v", name, err)
	}
}

// exportOf writes the functions of a fresh store holding names into a file.
func exportOf(t *testing.T, names ...string) string {
	t.Helper()
	tmp := t.TempDir()
	src := sqliteStore(t, filepath.Join(tmp, "src.db"))
	for _, n := range names {
		save(t, src, n, "$input", "-negate", n+".png")
	}
	out := filepath.Join(tmp, "export.db")
	if _, err := exporter.ExportFunctions(context.Background(), src, out, nil); err != nil {
		t.Fatalf("ExportFunctions: %v", err)
	}
	return out
}

func TestImportIntoEmptyStore(t *testing.T) {
	file := exportOf(t, "one", "two")
	dst := sqliteStore(t, filepath.Join(t.TempDir(), "dst.db"))

	rep, err := ImportFunctions(context.Background(), dst, file, Rename)
	if err != nil {
		t.Fatalf("ImportFunctions: %v", err)
	}
	if len(rep.Imported) != 2 || len(rep.Skipped) != 0 || len(rep.Renamed) != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	fns, _ := dst.List(context.Background())
	if len(fns) != 2 || fns[0].Name != "one" || fns[1].Name != "two" {
		t.Fatalf("unexpected store contents: %+v", fns)
	}
}

func TestImportRenamesOnConflict(t *testing.T) {
	file := exportOf(t, "gray")
	dst := sqliteStore(t, filepath.Join(t.TempDir(), "dst.db"))
	save(t, dst, "gray", "keep")
	save(t, dst, "gray-import-1", "keep")

	rep, err := ImportFunctions(context.Background(), dst, file, Rename)
	if err != nil {
		t.Fatalf("ImportFunctions: %v", err)
	}
	if rep.Renamed["gray"] != "gray-import-2" {
		t.Fatalf("expected rename to gray-import-2, got %+v", rep)
	}
	orig, _ := dst.Get(context.Background(), "gray")
	if orig.Commands[0][0] != "keep" {
		t.Fatalf("existing function was modified: %+v", orig)
	}
	got, err := dst.Get(context.Background(), "gray-import-2")
	if err != nil || got.Commands[0][2] != "gray.png" {
		t.Fatalf("imported copy: %+v %v", got, err)
	}
}

func TestImportSkipOnConflict(t *testing.T) {
	file := exportOf(t, "gray", "new")
	dst := sqliteStore(t, filepath.Join(t.TempDir(), "dst.db"))
	save(t, dst, "gray", "keep")

	rep, err := ImportFunctions(context.Background(), dst, file, Skip)
	if err != nil {
		t.Fatalf("ImportFunctions: %v", err)
	}
	if len(rep.Skipped) != 1 || rep.Skipped[0] != "gray" || len(rep.Imported) != 1 || rep.Imported[0] != "new" {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestImportIntoBadgerStore(t *testing.T) {
	file := exportOf(t, "a", "b")
	dst, err := registry.OpenBadger(filepath.Join(t.TempDir(), "badger"), zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := ImportFunctions(context.Background(), dst, file, Rename); err != nil {
		t.Fatalf("ImportFunctions: %v", err)
	}
	fns, _ := dst.List(context.Background())
	if len(fns) != 2 || fns[0].Name != "a" || fns[1].Name != "b" {
		t.Fatalf("unexpected badger contents: %+v", fns)
	}
}

func TestImportMissingSource(t *testing.T) {
	dst := sqliteStore(t, filepath.Join(t.TempDir(), "dst.db"))
	if _, err := ImportFunctions(context.Background(), dst, filepath.Join(t.TempDir(), "nope.db"), Rename); err == nil {
		t.Fatalf("expected error for missing source")
	}
}

func TestImportRejectsInvalidFunctions(t *testing.T) {
	cases := map[string][][]string{
		"no commands":   {},
		"empty command": {{"$input", "out.png"}, {}},
	}
	for name, commands := range cases {
		t.Run(name, func(t *testing.T) {
			tmp := t.TempDir()
			srcPath := filepath.Join(tmp, "crafted.db")
			src := sqliteStore(t, srcPath)
			save(t, src, "good", "$input", "-negate", "good.png")
			// the store itself does not validate, so a hand-made file can hold these
			if err := src.Save(context.Background(), registry.Function{Name: "bad", Commands: commands}); err != nil {
				t.Fatalf("Save bad: %v", err)
			}

			dst := sqliteStore(t, filepath.Join(tmp, "dst.db"))
			_, err := ImportFunctions(context.Background(), dst, srcPath, Rename)
			var ve *registry.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			fns, _ := dst.List(context.Background())
			if len(fns) != 0 {
				t.Fatalf("an invalid source must import nothing, got %+v", fns)
			}
		})
	}
}

func TestImportNormalizesNames(t *testing.T) {
	tmp := t.TempDir()
	srcPath := filepath.Join(tmp, "src.db")
	save(t, sqliteStore(t, srcPath), " sepia\u200b", "$input", "-sepia-tone", "80%", "out.png")

	dst := sqliteStore(t, filepath.Join(tmp, "dst.db"))
	rep, err := ImportFunctions(context.Background(), dst, srcPath, Rename)
	if err != nil {
		t.Fatalf("ImportFunctions: %v", err)
	}
	if rep.Renamed[" sepia\u200b"] != "sepia" {
		t.Fatalf("expected normalized name in report, got %+v", rep)
	}
	if _, err := dst.Get(context.Background(), "sepia"); err != nil {
		t.Fatalf("Get sepia: %v", err)
	}
}
