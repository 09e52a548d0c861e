package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is the schema version Migrate brings the database to.
// It is stored in PRAGMA user_version.
var SchemaVersion = len(migrations)

// migrations[i] upgrades the schema from version i to version i+1.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS memos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			content TEXT NOT NULL,
			hashtags TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_memos_title ON memos(title)`,
		`CREATE INDEX IF NOT EXISTS idx_memos_category ON memos(category)`,
		`CREATE INDEX IF NOT EXISTS idx_memos_created_at ON memos(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_memos_updated_at ON memos(updated_at)`,

		// No foreign key: memo deletion decides whether comments go with it.
		`CREATE TABLE IF NOT EXISTS comments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			memo_id INTEGER NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_memo_id ON comments(memo_id)`,
	},
}

type DB struct {
	*sql.DB
}

func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, unavailable("open", fmt.Errorf("create database directory: %w", err))
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, unavailable("open", err)
	}

	// A single writer connection keeps inserts and their id reads ordered.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, unavailable("open", fmt.Errorf("enable WAL mode: %w", err))
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, unavailable("open", fmt.Errorf("set busy timeout: %w", err))
	}

	return &DB{db}, nil
}

// Migrate brings the schema up to SchemaVersion. With an unchanged schema
// version it does nothing, so it is safe to call on every launch.
func (db *DB) Migrate() error {
	version, err := db.Version()
	if err != nil {
		return unavailable("migrate", err)
	}
	if version >= SchemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return unavailable("migrate", err)
	}
	defer tx.Rollback()

	for v := version; v < SchemaVersion; v++ {
		for _, query := range migrations[v] {
			if _, err := tx.Exec(query); err != nil {
				return &StoreError{Op: "migrate", Err: fmt.Errorf("migration %d failed: %w", v+1, err)}
			}
		}
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return &StoreError{Op: "migrate", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "migrate", Err: err}
	}
	return nil
}

// Version returns the schema version recorded in the database file.
func (db *DB) Version() (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
