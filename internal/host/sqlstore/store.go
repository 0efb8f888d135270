// Package sqlstore persists host records in a SQLite database using the pure-Go
// modernc.org/sqlite driver.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/kongondo/SitesManager-sub001/internal/host"
	"github.com/kongondo/SitesManager-sub001/internal/messages"
)

const schema = `
CREATE TABLE IF NOT EXISTS fields (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	type TEXT NOT NULL,
	label TEXT NOT NULL DEFAULT '',
	options_json TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS fieldgroups (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	field_ids_json TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS templates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	label TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '',
	fieldgroup_id INTEGER NOT NULL REFERENCES fieldgroups(id),
	use_roles INTEGER NOT NULL DEFAULT 0,
	no_children INTEGER NOT NULL DEFAULT 0,
	no_parents INTEGER NOT NULL DEFAULT 0,
	child_templates_json TEXT NOT NULL DEFAULT '[]',
	parent_templates_json TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS pages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	parent_id INTEGER NOT NULL DEFAULT 0,
	name TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	template_id INTEGER NOT NULL REFERENCES templates(id),
	status INTEGER NOT NULL DEFAULT 1,
	meta_json TEXT NOT NULL DEFAULT '{}',
	UNIQUE (parent_id, name)
);
CREATE INDEX IF NOT EXISTS idx_pages_parent ON pages(parent_id);
CREATE INDEX IF NOT EXISTS idx_pages_template ON pages(template_id);

CREATE TABLE IF NOT EXISTS modules (
	class TEXT PRIMARY KEY,
	data_json TEXT NOT NULL DEFAULT '{}'
);
`

// Store is a SQLite-backed host record store.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf(messages.StoreCreateDirFmt, path, err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf(messages.StoreOpenFmt, path, err)
	}
	// One connection keeps the pragmas and in-process writes consistent.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, dbPath: path}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf(messages.StoreSchemaFmt, path, err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Repositories exposes the store through the host repository interfaces.
func (s *Store) Repositories() host.Repositories {
	return host.Repositories{
		Fields:      fieldRepo{s.db},
		Fieldgroups: fieldgroupRepo{s.db},
		Templates:   templateRepo{s.db},
		Pages:       pageRepo{s.db},
		Modules:     moduleRepo{s.db},
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error, format string, arg any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf(format+": %w", arg, host.ErrNotFound)
	}
	return fmt.Errorf(format+": %w", arg, err)
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func checkAffected(res sql.Result, format string, arg any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf(format+": %w", arg, host.ErrNotFound)
	}
	return nil
}
