package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cheap() Hasher {
	return NewHasher(Config{MemoryKiB: 1024, Iterations: 1, Parallelism: 1})
}

func TestHashAndVerify(t *testing.T) {
	h := cheap()

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	assert.NoError(t, h.Verify(hash, "correct horse"))
	assert.ErrorIs(t, h.Verify(hash, "wrong horse"), ErrMismatch)
	assert.ErrorIs(t, h.Verify(hash, ""), ErrMismatch)
}

func TestHashIsSalted(t *testing.T) {
	h := cheap()
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyAcceptsOtherParams(t *testing.T) {
	old := NewHasher(Config{MemoryKiB: 2048, Iterations: 2, Parallelism: 1})
	hash, err := old.Hash("pw")
	require.NoError(t, err)

	assert.NoError(t, cheap().Verify(hash, "pw"))
}

func TestVerifyInvalidHash(t *testing.T) {
	tests := map[string]struct {
		hash string
		want error
	}{
		"empty":         {"", ErrInvalidHash},
		"wrong algo":    {"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5", ErrInvalidHash},
		"wrong version": {"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5", ErrIncompatibleVersion},
		"bad params":    {"$argon2id$v=19$x$c2FsdA$a2V5", ErrInvalidHash},
		"bad salt":      {"$argon2id$v=19$m=1024,t=1,p=1$!!$a2V5", ErrInvalidHash},
		"missing key":   {"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$", ErrInvalidHash},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, cheap().Verify(tt.hash, "pw"), tt.want)
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	h := cheap()
	current, err := h.Hash("pw")
	require.NoError(t, err)
	assert.False(t, h.NeedsRehash(current))

	stale, err := NewHasher(Config{MemoryKiB: 2048, Iterations: 1, Parallelism: 1}).Hash("pw")
	require.NoError(t, err)
	assert.True(t, h.NeedsRehash(stale))

	assert.True(t, h.NeedsRehash("garbage"))
}

func TestConfigDefaults(t *testing.T) {
	p := Config{}.params()
	assert.Equal(t, Params{Memory: 64 * 1024, Iterations: 3, Parallelism: 2, SaltLength: 16, KeyLength: 32}, p)

	low := Config{LowMemoryMode: true}.params()
	assert.Equal(t, uint32(32*1024), low.Memory)
	assert.Equal(t, uint32(4), low.Iterations)
}

func TestGenerate(t *testing.T) {
	for _, n := range []int{1, 8, 16, 33} {
		assert.Len(t, Generate(n), n)
	}
	assert.Len(t, Generate(0), 16)
	assert.NotEqual(t, Generate(24), Generate(24))
}
