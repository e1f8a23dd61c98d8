package codes

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantLen int
	}{
		{"default", DefaultConfig(), 32},
		{"too short falls back", Config{TokenByteLength: 4}, 32},
		{"custom", Config{TokenByteLength: 24}, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := NewGenerator(tt.cfg).Token()
			require.NoError(t, err)

			raw, err := base64.RawURLEncoding.DecodeString(tok)
			require.NoError(t, err)
			assert.Len(t, raw, tt.wantLen)
		})
	}
}

func TestTokensAreUnique(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		tok, err := g.Token()
		require.NoError(t, err)
		_, dup := seen[tok]
		require.False(t, dup)
		seen[tok] = struct{}{}
	}
}

func TestInvalidLength(t *testing.T) {
	_, err := GenerateURLSafeToken(0)
	assert.ErrorIs(t, err, ErrInvalidLength)

	hexTok, err := GenerateSecureToken(16)
	require.NoError(t, err)
	assert.Len(t, hexTok, 32)
}
