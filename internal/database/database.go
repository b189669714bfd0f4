// Package database is the sqlite-backed reservation store.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB wraps the sqlite connection of one site.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

// NewDB opens the site database at path and creates tables if they don't exist.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode and busy timeout: commits serialize on the write lock, reads
	// stay concurrent.
	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	instance := &DB{DB: db, logger: logger}
	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return instance, nil
}

func (db *DB) createTables() error {
	queries := []string{
		// Reservation headers. Global dates are NULL in per-room mode.
		`CREATE TABLE IF NOT EXISTS reservations (
			id TEXT NOT NULL UNIQUE,
			guest_name TEXT NOT NULL,
			global_arrival TEXT,
			global_departure TEXT,
			global_nights INTEGER NOT NULL DEFAULT 0,
			per_room INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Room lines, keyed by (id, room_idx). Replaced as a whole with the
		// header; never updated row by row.
		`CREATE TABLE IF NOT EXISTS reservation_rooms (
			id TEXT NOT NULL,
			room_idx INTEGER NOT NULL,
			room_type TEXT NOT NULL,
			employees INTEGER NOT NULL DEFAULT 0,
			guests INTEGER NOT NULL DEFAULT 0,
			arrival TEXT NOT NULL,
			departure TEXT NOT NULL,
			nights INTEGER NOT NULL DEFAULT 0,
			price REAL NOT NULL DEFAULT 0
		)`,

		// Pending stay requests. The proposed room list is stored as JSON.
		`CREATE TABLE IF NOT EXISTS requests (
			req_id TEXT PRIMARY KEY,
			guest_name TEXT NOT NULL,
			contact TEXT,
			arrival TEXT,
			departure TEXT,
			nights INTEGER NOT NULL DEFAULT 0,
			people INTEGER NOT NULL DEFAULT 0,
			per_room INTEGER NOT NULL DEFAULT 0,
			rooms_json TEXT NOT NULL DEFAULT '[]',
			status TEXT NOT NULL DEFAULT 'new',
			note TEXT,
			created_at DATETIME NOT NULL
		)`,

		// Per-person price breakdown of a reservation.
		`CREATE TABLE IF NOT EXISTS participants (
			id TEXT NOT NULL,
			person_idx INTEGER NOT NULL,
			name TEXT NOT NULL,
			is_employee INTEGER NOT NULL,
			nights INTEGER NOT NULL,
			room_type TEXT,
			price REAL NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_id ON reservations(id)`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_id ON reservation_rooms(id)`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_type ON reservation_rooms(room_type, arrival, departure)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_id ON participants(id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
