package codes

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

var ErrInvalidLength = errors.New("invalid code length")

// MinTokenByteLength keeps generated tokens above 128 bits of entropy.
const MinTokenByteLength = 16

// Generator issues opaque bearer tokens of a fixed size.
type Generator struct {
	byteLength int
}

func NewGenerator(cfg Config) Generator {
	n := cfg.TokenByteLength
	if n < MinTokenByteLength {
		n = DefaultConfig().TokenByteLength
	}
	return Generator{byteLength: n}
}

// Token returns a URL-safe base64 token (no padding).
func (g Generator) Token() (string, error) {
	return GenerateURLSafeToken(g.byteLength)
}

// GenerateSecureToken creates a cryptographically secure hex token.
// byteLength specifies the number of random bytes (output will be 2x this length in hex).
func GenerateSecureToken(byteLength int) (string, error) {
	b, err := randomBytes(byteLength)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateURLSafeToken creates a URL-safe base64-encoded token.
// byteLength specifies the number of random bytes.
func GenerateURLSafeToken(byteLength int) (string, error) {
	b, err := randomBytes(byteLength)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func randomBytes(n int) ([]byte, error) {
	if n < 1 {
		return nil, ErrInvalidLength
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
