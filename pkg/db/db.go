// Package db keeps the run ledger in a SQLite database stored next to
// the binary, so past run metadata survives across invocations without
// any external service.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const DefaultDBName = "docforge.db"

type DB struct {
	*sql.DB
	path string
}

// Open opens the ledger next to the binary, creating the schema on
// first use.
func Open() (*DB, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable path: %w", err)
	}
	return OpenAt(filepath.Join(filepath.Dir(execPath), DefaultDBName))
}

// OpenAt opens or creates the ledger at an explicit path. ":memory:"
// gives a throwaway ledger.
func OpenAt(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := &DB{DB: sqlDB, path: path}
	if err := db.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}
	return db, nil
}

// ensureSchema creates the tables unless the runs table already exists.
func (db *DB) ensureSchema() error {
	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='runs'",
	).Scan(&name)
	switch err {
	case nil:
		return nil
	case sql.ErrNoRows:
		_, err = db.Exec(schema)
		return err
	default:
		return err
	}
}

// Path returns the ledger file path.
func (db *DB) Path() string {
	return db.path
}
