// Package tokens generates password-recovery codes and their storable
// digests. The plaintext code is short enough to retype from an email; only
// its SHA-256 digest is ever persisted.
package tokens

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/josegonzalo071-svg/house-backend/internal/common"
)

// tokenBytes is the entropy behind a recovery code. 4 bytes render as
// 8 hex characters.
const tokenBytes = 4

// PlaintextLen is the length of a rendered recovery code.
const PlaintextLen = tokenBytes * 2

// Generator produces recovery codes from a cryptographically secure source.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// New returns a fresh plaintext recovery code and its digest. The plaintext
// goes into the notification email; the digest goes into storage.
func (g *Generator) New() (plaintext, digest string, err error) {
	plaintext, err = common.MakeRandHexString(tokenBytes)
	if err != nil {
		return "", "", err
	}
	return plaintext, DigestOf(plaintext), nil
}

// DigestOf re-derives the storable digest from a user-submitted code.
func DigestOf(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
