// Package sqlite implements the repository interfaces using SQLite as
// the storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation
// of the SQLite sources — works everywhere Go works.
//
// STORAGE LAYOUT:
// The profile "document" is normalized into two tables: profiles holds
// the scalar fields plus the derived counters, enrollments holds one row
// per course with UNIQUE(profile_id, course_id). Normalizing the
// embedded list means a progress update writes one enrollment row and
// two counter columns inside a transaction — two concurrent updates to
// different courses of the same profile both land, instead of the last
// full-document write clobbering the other.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	// Registers the "sqlite" driver with database/sql at init time.
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements both
// repository.UserRepository and repository.ProfileRepository.
// The server constructs it at startup and closes it on shutdown —
// there is no package-level connection state.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath and runs migrations.
// Use ":memory:" for a throwaway in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Force an immediate connection so a bad path fails here,
	// not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight —
	// necessary for a web server with parallel requests.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; enrollments reference
	// profiles and profiles reference users, so turn them on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers should defer this right
// after New so the WAL is flushed even on a panic.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	// Username and email are unique per account. The store enforces
	// this; the adapter translates the constraint failure into a typed
	// conflict error (see isUniqueViolation).
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// One profile per user: user_id is UNIQUE.
	// skills/interests are JSON-encoded string arrays.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id                TEXT PRIMARY KEY,
			user_id           TEXT NOT NULL UNIQUE REFERENCES users(id),
			full_name         TEXT NOT NULL DEFAULT '',
			phone             TEXT NOT NULL DEFAULT '',
			address           TEXT NOT NULL DEFAULT '',
			school            TEXT NOT NULL DEFAULT '',
			bio               TEXT NOT NULL DEFAULT '',
			skills            TEXT NOT NULL DEFAULT '[]',
			interests         TEXT NOT NULL DEFAULT '[]',
			completed_courses INTEGER NOT NULL DEFAULT 0,
			total_hours       REAL NOT NULL DEFAULT 0,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating profiles table: %w", err)
	}

	// UNIQUE(profile_id, course_id) makes double enrollment structurally
	// impossible — both the enroll flow and the add-course flow surface
	// it as a conflict.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS enrollments (
			id                TEXT PRIMARY KEY,
			profile_id        TEXT NOT NULL REFERENCES profiles(id),
			course_id         TEXT NOT NULL,
			title             TEXT NOT NULL DEFAULT '',
			instructor        TEXT NOT NULL DEFAULT '',
			progress          INTEGER NOT NULL DEFAULT 0,
			status            TEXT NOT NULL DEFAULT 'in-progress',
			purchase_date     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			rating            REAL NOT NULL DEFAULT 0,
			price             TEXT NOT NULL DEFAULT 'Free',
			total_modules     INTEGER NOT NULL DEFAULT 0,
			completed_modules INTEGER NOT NULL DEFAULT 0,
			last_watched      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(profile_id, course_id)
		);
		CREATE INDEX IF NOT EXISTS idx_enrollments_profile_id ON enrollments(profile_id);
	`)
	if err != nil {
		return fmt.Errorf("creating enrollments table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
//
// This is the typed replacement for the classic "check if the error code
// equals 11000" pattern: the driver exposes a structured error with the
// extended SQLite result code, so no string matching is involved.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
