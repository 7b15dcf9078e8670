package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DBPath returns the path to the single shared database
func DBPath() string {
	return filepath.Join("data", "tidecast.db")
}

// Open opens (creating if needed) the station database at dbPath and makes
// sure its schema exists.
func Open(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Set pragmas for performance
	_, _ = db.Exec("PRAGMA journal_mode=WAL")
	_, _ = db.Exec("PRAGMA synchronous=NORMAL")
	_, _ = db.Exec("PRAGMA foreign_keys=ON")

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the station and port tables if they are missing.
// Existing rows are left alone.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS stations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			timezone TEXT,
			latitude REAL,
			longitude REAL,
			units TEXT NOT NULL,
			datum REAL NOT NULL DEFAULT 0,
			mark_level REAL,
			reference_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_stations_coords ON stations(latitude, longitude);

		CREATE TABLE IF NOT EXISTS constituents (
			station_id TEXT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			speed REAL NOT NULL,
			amplitude REAL NOT NULL,
			phase REAL NOT NULL,
			first_year INTEGER NOT NULL DEFAULT 0,
			node_factors TEXT,
			equilibrium_args TEXT,
			PRIMARY KEY (station_id, position)
		);

		CREATE TABLE IF NOT EXISTS station_offsets (
			station_id TEXT PRIMARY KEY REFERENCES stations(id) ON DELETE CASCADE,
			max_time_add INTEGER NOT NULL DEFAULT 0,
			min_time_add INTEGER NOT NULL DEFAULT 0,
			flood_begins INTEGER,
			ebb_begins INTEGER,
			max_level_multiply REAL NOT NULL DEFAULT 1,
			min_level_multiply REAL NOT NULL DEFAULT 1,
			max_level_add REAL NOT NULL DEFAULT 0,
			min_level_add REAL NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS user_ports (
			name TEXT PRIMARY KEY,
			location TEXT NOT NULL,
			state TEXT,
			city TEXT,
			zipcode TEXT,
			station_id TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			created_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating station tables: %w", err)
	}
	return nil
}
