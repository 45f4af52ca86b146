package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// poller and API share one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaSensorState = `
CREATE TABLE IF NOT EXISTS sensor_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    enabled BOOLEAN NOT NULL,
    cal_status TEXT NOT NULL,
    cal_factor INTEGER NOT NULL,
    cal_error TEXT,
    last_reading TEXT,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaSensorEvents = `
CREATE TABLE IF NOT EXISTS sensor_events (
    id TEXT PRIMARY KEY,
    occurred_at TIMESTAMP NOT NULL,
    type TEXT NOT NULL,
    message TEXT NOT NULL,
    meta TEXT,
    operator_id INTEGER REFERENCES operators (id)
);
`

const indexEventsOperator = `
CREATE INDEX IF NOT EXISTS idx_sensor_events_operator ON sensor_events (operator_id);
`

const schemaReadings = `
CREATE TABLE IF NOT EXISTS readings (
    id TEXT PRIMARY KEY,
    recorded_at TIMESTAMP NOT NULL,
    timestamp_ns INTEGER NOT NULL,
    version INTEGER NOT NULL,
    sensor_id INTEGER NOT NULL,
    type INTEGER NOT NULL,
    ambient REAL NOT NULL,
    white REAL NOT NULL,
    data TEXT NOT NULL
);
`

const indexReadingsRecordedAt = `
CREATE INDEX IF NOT EXISTS idx_readings_recorded_at ON readings (recorded_at);
`

const schemaOperators = `
CREATE TABLE IF NOT EXISTS operators (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaSensorState,
		schemaOperators,
		schemaSensorEvents,
		indexEventsOperator,
		schemaReadings,
		indexReadingsRecordedAt,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
