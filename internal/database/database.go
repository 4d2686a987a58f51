package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// New opens the SQLite database at path, creating the parent directory if
// needed. ":memory:" is supported for tests.
func New(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path
	if path != ":memory:" {
		// WAL keeps readers from blocking the writer; busy_timeout covers
		// short write contention between concurrent requests.
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	} else {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; keeping one connection avoids
	// SQLITE_BUSY churn and makes :memory: databases behave.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("✅ SQLite database opened: %s", path)

	return &DB{db}, nil
}

// Initialize creates all required tables and runs schema migrations.
func (db *DB) Initialize() error {
	log.Println("🔍 Checking database schema...")

	if err := db.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if err := db.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("✅ Database initialized successfully")
	return nil
}

func (db *DB) createTables() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			last_accessed TEXT NOT NULL,
			expires_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			metadata TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			event_date TEXT NOT NULL,
			event_time TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_date ON events(event_date)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// runMigrations runs database migrations for schema updates.
// Uses PRAGMA table_info to check for column existence.
func (db *DB) runMigrations() error {
	columnExists := func(tableName, columnName string) (bool, error) {
		rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
		if err != nil {
			return false, err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				cid     int
				name    string
				colType string
				notNull int
				dflt    sql.NullString
				pk      int
			)
			if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
				return false, err
			}
			if name == columnName {
				return true, nil
			}
		}
		return false, rows.Err()
	}

	// Migration: databases created before sliding expiry lack expires_at.
	// Backfill from last_accessed + 7 days so existing sessions survive.
	if exists, err := columnExists("sessions", "expires_at"); err == nil && !exists {
		log.Println("📦 Running migration: Adding expires_at to sessions table")
		if _, err := db.Exec("ALTER TABLE sessions ADD COLUMN expires_at TEXT"); err != nil {
			return fmt.Errorf("failed to add expires_at to sessions: %w", err)
		}
		if _, err := db.Exec("UPDATE sessions SET expires_at = datetime(last_accessed, '+7 days') WHERE expires_at IS NULL"); err != nil {
			return fmt.Errorf("failed to backfill expires_at: %w", err)
		}
		log.Println("✅ Migration completed: sessions.expires_at added")
	}

	log.Println("✅ All migrations completed")
	return nil
}
