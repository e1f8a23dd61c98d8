package password

import "github.com/Alijeyrad/simorq_portal/config"

// Config holds Argon2id parameters. Zero fields take DefaultConfig values.
type Config struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// LowMemoryMode caps memory at 32 MiB and adds an iteration to compensate.
	LowMemoryMode bool
}

// DefaultConfig follows the OWASP Argon2id recommendation.
func DefaultConfig() Config {
	return Config{
		MemoryKiB:   64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func FromCentralConfig(c config.PasswordConfig) Config {
	return Config{
		MemoryKiB:     c.MemoryKiB,
		Iterations:    c.Iterations,
		Parallelism:   c.Parallelism,
		SaltLength:    c.SaltLength,
		KeyLength:     c.KeyLength,
		LowMemoryMode: c.LowMemoryMode,
	}
}

func (c Config) params() Params {
	d := DefaultConfig()
	p := Params{
		Memory:      orDefault(c.MemoryKiB, d.MemoryKiB),
		Iterations:  orDefault(c.Iterations, d.Iterations),
		Parallelism: orDefault(c.Parallelism, d.Parallelism),
		SaltLength:  orDefault(c.SaltLength, d.SaltLength),
		KeyLength:   orDefault(c.KeyLength, d.KeyLength),
	}
	if c.LowMemoryMode && p.Memory > 32*1024 {
		p.Memory = 32 * 1024
		p.Iterations++
	}
	return p
}

func orDefault[T uint8 | uint32](v, d T) T {
	if v == 0 {
		return d
	}
	return v
}
