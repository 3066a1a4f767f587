// Package passwd implements the password credential primitive: a bcrypt
// digest over the per-user salt concatenated with the plaintext password.
package passwd

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/josegonzalo071-svg/house-backend/internal/common"
)

// bcryptCost matches the work factor the stored digests were produced with.
const bcryptCost = 10

// SaltBytes is the number of random bytes behind a salt; salts are rendered
// as hex, so the stored string is twice this length.
const SaltBytes = 16

// Hasher produces and verifies salted password digests.
//
// bcrypt seeds every digest with its own random value, so two calls with
// identical inputs yield different stored bytes while still verifying.
type Hasher struct{}

func NewHasher() *Hasher {
	return &Hasher{}
}

// NewSalt returns a fresh random salt for a user record.
func (h *Hasher) NewSalt() (string, error) {
	return common.MakeRandHexString(SaltBytes)
}

// Hash computes the digest of salt+password.
func (h *Hasher) Hash(password, salt string) (string, error) {
	buf := []byte(salt + password)
	defer common.WipeByteArray(buf)

	digest, err := bcrypt.GenerateFromPassword(buf, bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether password+salt matches digest. A malformed digest is
// indistinguishable from a wrong password: both return false.
func (h *Hasher) Verify(password, salt, digest string) bool {
	buf := []byte(salt + password)
	defer common.WipeByteArray(buf)

	return bcrypt.CompareHashAndPassword([]byte(digest), buf) == nil
}
