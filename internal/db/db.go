// Package db is the SQLite persistence layer: a durable L2 cache for
// resolved system coordinates and a history of handled dispatches.
package db

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// DefaultPath places the database next to the working directory so it is
// stable across go run / go build; falls back to the executable directory.
func DefaultPath() string {
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "ratnav.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "ratnav.db")
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{
		sql:     sqlDB,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) newID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), d.entropy).String()
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS systems (
				name_key       TEXT PRIMARY KEY,
				name           TEXT NOT NULL,
				x              REAL NOT NULL,
				y              REAL NOT NULL,
				z              REAL NOT NULL,
				neutron_ly     REAL,
				white_dwarf_ly REAL,
				resolved_at    TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS dispatches (
				id          TEXT PRIMARY KEY,
				created_at  TEXT NOT NULL,
				case_id     TEXT,
				commander   TEXT,
				origin      TEXT NOT NULL,
				destination TEXT NOT NULL,
				distance_ly REAL NOT NULL,
				jumps       INTEGER NOT NULL,
				route_class TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_dispatches_created ON dispatches(created_at DESC);

			INSERT INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return nil
}
