package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/hsplan/internal/logger"
	"github.com/julianstephens/hsplan/internal/migration"
	"github.com/julianstephens/hsplan/internal/storage"
	"github.com/julianstephens/hsplan/migrations"
)

const timeLayout = time.RFC3339Nano

type Store struct {
	path string
	db   *sql.DB
}

var _ storage.Provider = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

// Init creates the database file if needed and applies every pending migration.
func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}
	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.Apply(func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens an existing database and refuses schemas newer than this binary.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return storage.ErrNotInitialized
	}
	if err := s.open(); err != nil {
		return err
	}
	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) runner() (*migration.Runner, error) {
	return migration.NewRunner(s.db, migrations.SQLite(), migration.DriverSQLite)
}

// SchemaVersion reports the applied schema version and the newest one embedded in the binary.
func (s *Store) SchemaVersion() (current, latest int, err error) {
	runner, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = runner.CurrentVersion(); err != nil {
		return 0, 0, err
	}
	latest, err = runner.LatestVersion()
	return current, latest, err
}

// Migrate applies pending migrations to an already loaded database.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	return runner.Apply(logFn)
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying connection, nil before Init or Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		logger.Warn("unparseable timestamp in database", "value", s, "error", err)
		return time.Time{}
	}
	return t
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intFromNull(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func notFound(err error, what, id string) error {
	if err == sql.ErrNoRows {
		return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
	}
	return err
}
