package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/simorq_portal/config"
)

func TestFromCentralConfigDefaults(t *testing.T) {
	c := FromCentralConfig(config.RedisConfig{Addr: "cache:6379", PoolSize: 50})

	assert.Equal(t, "cache:6379", c.Addr)
	assert.Equal(t, 50, c.PoolSize)
	assert.Equal(t, defaults().MinIdleConns, c.MinIdleConns)
	assert.Equal(t, 5*time.Second, c.DialTimeout)

	c = FromCentralConfig(config.RedisConfig{ReadTimeoutSeconds: 9})
	assert.Equal(t, "localhost:6379", c.Addr)
	assert.Equal(t, 9*time.Second, c.ReadTimeout)
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := defaults()
	cfg.Addr = mr.Addr()
	rdb, err := NewRedis(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	_, err = NewRedis(Config{})
	assert.Error(t, err)
}
