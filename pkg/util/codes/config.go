package codes

import "github.com/Alijeyrad/simorq_portal/config"

type Config struct {
	// TokenByteLength is the number of random bytes per token
	TokenByteLength int
}

func DefaultConfig() Config {
	return Config{TokenByteLength: 32}
}

// FromCentralConfig converts central config.CodesConfig to package Config
func FromCentralConfig(c config.CodesConfig) Config {
	return Config{TokenByteLength: c.TokenByteLength}
}
