package redis

import (
	"time"

	"github.com/Alijeyrad/simorq_portal/config"
)

type Config struct {
	Addr     string
	DB       int
	Username string
	Password string

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func defaults() Config {
	return Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// FromCentralConfig keeps the defaults for unset pool sizes and timeouts.
func FromCentralConfig(c config.RedisConfig) Config {
	out := defaults()
	if c.Addr != "" {
		out.Addr = c.Addr
	}
	out.DB, out.Username, out.Password = c.DB, c.Username, c.Password
	setInt(&out.PoolSize, c.PoolSize)
	setInt(&out.MinIdleConns, c.MinIdleConns)
	setSeconds(&out.DialTimeout, c.DialTimeoutSeconds)
	setSeconds(&out.ReadTimeout, c.ReadTimeoutSeconds)
	setSeconds(&out.WriteTimeout, c.WriteTimeoutSeconds)
	return out
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setSeconds(dst *time.Duration, v int) {
	if v > 0 {
		*dst = time.Duration(v) * time.Second
	}
}
