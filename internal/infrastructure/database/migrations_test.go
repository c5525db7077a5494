package database

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
)

func useMigrations(t *testing.T, fsys fs.FS) {
	t.Helper()
	prev := Migrations
	Migrations = fsys
	t.Cleanup(func() { Migrations = prev })
}

var testMigrations = fstest.MapFS{
	"20260301_120000_widgets.up.sql":   {Data: []byte("CREATE TABLE widgets (id TEXT PRIMARY KEY) STRICT;")},
	"20260301_120000_widgets.down.sql": {Data: []byte("DROP TABLE widgets;")},
	"20260302_090000_gadgets.up.sql":   {Data: []byte("CREATE TABLE gadgets (id TEXT PRIMARY KEY) STRICT;")},
	"README.md":                        {Data: []byte("ignored")},
	"20260303_notes.sql":               {Data: []byte("ignored")},
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	return n == 1
}

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		file    string
		version string
		name    string
		up      bool
		ok      bool
	}{
		{"20260301_120000_initial.up.sql", "20260301_120000", "initial", true, true},
		{"20260301_120000_initial_schema.down.sql", "20260301_120000", "initial_schema", false, true},
		{"20260301_120000.up.sql", "20260301_120000", "", true, true},
		{"20260301_120000_initial.sql", "", "", false, false},
		{"20260301.up.sql", "", "", false, false},
		{"embed.go", "", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			version, name, up, ok := parseMigrationName(tt.file)
			if ok != tt.ok || version != tt.version || name != tt.name || up != tt.up {
				t.Errorf("parseMigrationName() = (%q, %q, %v, %v), want (%q, %q, %v, %v)",
					version, name, up, ok, tt.version, tt.name, tt.up, tt.ok)
			}
		})
	}
}

func TestLoadMigrations(t *testing.T) {
	ms, err := LoadMigrations(testMigrations)
	if err != nil {
		t.Fatalf("LoadMigrations() error = %v", err)
	}
	if len(ms) != 2 {
		t.Fatalf("len = %d, want 2", len(ms))
	}
	if ms[0].Version != "20260301_120000" || ms[0].Down == "" {
		t.Errorf("first = %+v, want widgets with down SQL", ms[0])
	}
	if ms[1].Name != "gadgets" || ms[1].Down != "" {
		t.Errorf("second = %+v, want gadgets without down SQL", ms[1])
	}

	if ms, err := LoadMigrations(nil); err != nil || ms != nil {
		t.Errorf("LoadMigrations(nil) = %v, %v", ms, err)
	}

	downOnly := fstest.MapFS{"20260301_120000_x.down.sql": {Data: []byte("SELECT 1;")}}
	if _, err := LoadMigrations(downOnly); err == nil {
		t.Error("LoadMigrations() accepted a version without an up file")
	}
}

func TestMigrateAndRollback(t *testing.T) {
	useMigrations(t, testMigrations)
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "widgets") || !tableExists(t, db, "gadgets") {
		t.Fatal("tables not created")
	}

	// Idempotent.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	applied, err := db.Applied(ctx)
	if err != nil {
		t.Fatalf("Applied() error = %v", err)
	}
	if len(applied) != 2 || applied[1].Version != "20260302_090000" || applied[1].AppliedAt.IsZero() {
		t.Errorf("Applied() = %+v", applied)
	}

	if err := db.Rollback(ctx); !errors.Is(err, ErrNoDownMigration) {
		t.Errorf("Rollback() error = %v, want ErrNoDownMigration", err)
	}
}

func TestRollback(t *testing.T) {
	useMigrations(t, fstest.MapFS{
		"20260301_120000_widgets.up.sql":   testMigrations["20260301_120000_widgets.up.sql"],
		"20260301_120000_widgets.down.sql": testMigrations["20260301_120000_widgets.down.sql"],
	})
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.Rollback(ctx); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if tableExists(t, db, "widgets") {
		t.Error("widgets still exists after rollback")
	}
	applied, _ := db.Applied(ctx)
	if len(applied) != 0 {
		t.Errorf("Applied() = %+v, want none", applied)
	}

	if err := db.Rollback(ctx); err != nil {
		t.Errorf("Rollback() with nothing applied error = %v", err)
	}
}

func TestMigrate_FailureRollsBack(t *testing.T) {
	useMigrations(t, fstest.MapFS{
		"20260301_120000_broken.up.sql": {Data: []byte("CREATE TABLE ok_table (id TEXT) STRICT; CREATE TABLE broken (")},
	})
	db := openTestDB(t)

	if err := db.Migrate(context.Background()); err == nil {
		t.Fatal("Migrate() succeeded on broken SQL")
	}
	if tableExists(t, db, "ok_table") {
		t.Error("partial migration left ok_table behind")
	}
}
