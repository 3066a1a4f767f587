package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns a hex string built from size cryptographically
// random bytes, so the resulting string is twice as long as size. It is used
// for salts and recovery codes where the value must be unguessable yet easy
// to transcribe.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites the slice contents with zeros. Used to drop
// plaintext passwords from memory once a digest has been computed. A nil
// slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
