// Package models defines the persisted entities of the house-backend server.
package models

import "time"

// User is a registered account. Salt and PasswordHash travel together: the
// hash is always a function of salt+password, never of the password alone,
// and a successful reset overwrites both in one step.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	Salt         string    `db:"salt"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
