package migration

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newRunner(t *testing.T, db *sql.DB, files map[string]string) *Runner {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	r, err := NewRunner(db, fsys, DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func TestNewRunnerRejectsUnknownDriver(t *testing.T) {
	if _, err := NewRunner(nil, fstest.MapFS{}, "mysql"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestVersionRoundTrip(t *testing.T) {
	r := newRunner(t, openTestDB(t), nil)

	v, err := r.CurrentVersion()
	if err != nil || v != 0 {
		t.Fatalf("CurrentVersion() = %d, %v; want 0, nil", v, err)
	}
	setVersion(t, r, 4)
	if v, _ := r.CurrentVersion(); v != 4 {
		t.Errorf("CurrentVersion() = %d, want 4", v)
	}
}

func TestMigrations(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		want    []int
		wantErr string
	}{
		{
			name: "sorted by version",
			files: map[string]string{
				"010_units.sql":  "SELECT 1;",
				"002_plans.sql":  "SELECT 1;",
				"001_init.sql":   "SELECT 1;",
				"README.md":      "ignored",
				"003_notsql.txt": "ignored",
			},
			want: []int{1, 2, 10},
		},
		{
			name:    "missing underscore",
			files:   map[string]string{"001init.sql": "SELECT 1;"},
			wantErr: "expected NNN_name.sql",
		},
		{
			name:    "zero version",
			files:   map[string]string{"000_init.sql": "SELECT 1;"},
			wantErr: "positive integer",
		},
		{
			name:    "duplicate version",
			files:   map[string]string{"001_a.sql": "SELECT 1;", "1_b.sql": "SELECT 1;"},
			wantErr: "duplicate migration version 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRunner(t, openTestDB(t), tt.files)
			migrations, err := r.Migrations()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Migrations() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Migrations() failed: %v", err)
			}
			var got []int
			for _, m := range migrations {
				got = append(got, m.Version)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("versions = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("versions = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestApply(t *testing.T) {
	db := openTestDB(t)
	r := newRunner(t, db, map[string]string{
		"001_learners.sql": "CREATE TABLE learners (id TEXT PRIMARY KEY, name TEXT NOT NULL);",
		"002_grade.sql":    "ALTER TABLE learners ADD COLUMN grade TEXT;",
	})

	var logs []string
	n, err := r.Apply(func(s string) { logs = append(logs, s) })
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if n != 2 {
		t.Errorf("Apply() applied %d, want 2", n)
	}
	if len(logs) == 0 {
		t.Error("expected progress messages")
	}
	if _, err := db.Exec("INSERT INTO learners (id, name, grade) VALUES ('1', 'Ada', '4')"); err != nil {
		t.Errorf("schema not applied: %v", err)
	}

	n, err = r.Apply(nil)
	if err != nil || n != 0 {
		t.Errorf("second Apply() = %d, %v; want 0, nil", n, err)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	db := openTestDB(t)
	r := newRunner(t, db, map[string]string{
		"001_ok.sql":     "CREATE TABLE ok (id INTEGER);",
		"002_broken.sql": "CREATE TABLE broken (id INTEGER;",
	})

	n, err := r.Apply(nil)
	if err == nil {
		t.Fatal("expected Apply to fail")
	}
	if n != 1 {
		t.Errorf("applied = %d, want 1", n)
	}
	if v, _ := r.CurrentVersion(); v != 1 {
		t.Errorf("CurrentVersion() = %d, want 1", v)
	}
}

func TestApplyRejectsNewerSchema(t *testing.T) {
	r := newRunner(t, openTestDB(t), map[string]string{"001_init.sql": "SELECT 1;"})
	setVersion(t, r, 9)
	if _, err := r.Apply(nil); !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("Apply() error = %v, want %v", err, ErrSchemaTooNew)
	}
	if err := r.ValidateVersion(); !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("ValidateVersion() error = %v, want %v", err, ErrSchemaTooNew)
	}
}

func setVersion(t *testing.T, r *Runner, version int) {
	t.Helper()
	if err := r.EnsureSchemaVersionTable(); err != nil {
		t.Fatalf("EnsureSchemaVersionTable: %v", err)
	}
	tx, err := r.db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := r.writeVersion(tx, version); err != nil {
		_ = tx.Rollback()
		t.Fatalf("writeVersion: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}
