package models

import (
	"database/sql"
	"time"
)

// ResetToken is an issued password-recovery code. Only the SHA-256 digest of
// the plaintext code is stored. Username is a soft reference: it is not
// backed by a foreign key, so readers must re-resolve the user.
type ResetToken struct {
	ID          int64        `db:"id"`
	Username    string       `db:"username"`
	TokenDigest string       `db:"token_digest"`
	ExpiresAt   time.Time    `db:"expires_at"`
	ConsumedAt  sql.NullTime `db:"consumed_at"`
}
