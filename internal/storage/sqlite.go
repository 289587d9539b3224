// Package storage provides SQLite persistence for homepulse.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection.
type DB struct {
	*sql.DB
}

var (
	instance *DB
	once     sync.Once
)

// GetDB returns the singleton database instance.
func GetDB() *DB {
	return instance
}

// Initialize creates and initializes the shared database under dataDir.
func Initialize(dataDir string) (*DB, error) {
	var initErr error
	once.Do(func() {
		instance, initErr = Open(filepath.Join(dataDir, "homepulse.db"))
	})
	return instance, initErr
}

// Open opens a database at the given path and creates the schema.
// Tests use Open directly to get isolated databases.
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{DB: db}
	if err := d.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return d, nil
}

func (db *DB) createTables() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS dashboard_config (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL DEFAULT 'Homepulse',
			tab_title TEXT NOT NULL DEFAULT '',
			favicon_url TEXT NOT NULL DEFAULT '',
			background_url TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL DEFAULT 'dark',
			show_details INTEGER NOT NULL DEFAULT 1,
			font_family TEXT NOT NULL DEFAULT '',
			font_size TEXT NOT NULL DEFAULT '',
			icon_size TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS pages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			display_order INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS groups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			page_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			display_order INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (page_id) REFERENCES pages(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_groups_page_id ON groups(page_id)`,

		`CREATE TABLE IF NOT EXISTS services (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			group_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			url TEXT NOT NULL,
			icon_url TEXT,
			ip TEXT,
			port INTEGER,
			display_order INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (group_id) REFERENCES groups(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_services_group_id ON services(group_id)`,

		`CREATE TABLE IF NOT EXISTS bar_icons (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			alt TEXT,
			link TEXT,
			icon_url TEXT,
			display_order INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS widgets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			page_id INTEGER,
			type TEXT NOT NULL,
			title TEXT,
			config TEXT NOT NULL DEFAULT '{}',
			display_order INTEGER NOT NULL DEFAULT 0,
			enabled INTEGER NOT NULL DEFAULT 1
		)`,

		`CREATE TABLE IF NOT EXISTS alert_settings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			enabled INTEGER NOT NULL DEFAULT 1,
			webhook_url TEXT NOT NULL DEFAULT '',
			webhook_enabled INTEGER NOT NULL DEFAULT 0,
			down_threshold_minutes INTEGER NOT NULL DEFAULT 5,
			paused_until DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS service_alert_configs (
			service_id INTEGER PRIMARY KEY,
			enabled INTEGER,
			paused INTEGER,
			down_threshold_minutes INTEGER,
			webhook_url TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS service_liveness (
			service_id INTEGER PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'unknown',
			down_since DATETIME,
			last_checked DATETIME NOT NULL,
			last_alert_sent DATETIME
		)`,

		`CREATE TABLE IF NOT EXISTS alert_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL,
			service_id INTEGER,
			service_name TEXT NOT NULL,
			service_ip TEXT,
			service_port INTEGER,
			alert_type TEXT NOT NULL,
			message TEXT,
			webhook_sent INTEGER NOT NULL DEFAULT 0,
			webhook_response TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alert_history_created_at ON alert_history(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_alert_history_service_id ON alert_history(service_id)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to execute: %s: %w", table, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
