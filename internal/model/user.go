// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account — the credential record.
//
// Username and email are stored lowercased and trimmed, and both carry a
// UNIQUE constraint in the database. The store (not a pre-check in the
// service) is the source of truth for uniqueness, which closes the race
// between "check if taken" and "insert".
//
// WHY PasswordHash AND NOT Password?
// Only the bcrypt hash is ever persisted. The json:"-" tag makes it
// impossible to accidentally echo the hash in an API response — even if
// a handler serializes the whole struct, the field is skipped.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
