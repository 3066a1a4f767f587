package models

import "time"

// Item is an opaque named blob owned by a single account. Owner carries the
// username string; Mime is a hint for the caller, the payload is never
// inspected server-side.
type Item struct {
	ID        string    `db:"id"`
	Owner     string    `db:"owner"`
	Name      string    `db:"name"`
	Mime      string    `db:"mime"`
	Data      []byte    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
}
