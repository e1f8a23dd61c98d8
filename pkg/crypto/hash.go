// Package crypto holds digest helpers for secrets that are looked up but
// never read back, such as activation tokens and refresh-token ids.
package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Hash returns the hex SHA-256 digest of value.
func Hash(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// EqualHash compares a raw value against a stored digest in constant time.
func EqualHash(value, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(value)), []byte(digest)) == 1
}
