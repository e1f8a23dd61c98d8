package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Alijeyrad/simorq_portal/pkg/constants"
)

// ReadConfig loads path, which is either a config file or a directory
// holding config.yaml. Environment variables override file values, e.g.
// PORTAL_DATABASE_HOST for database.host. Without any file the environment
// alone must describe the database.
func ReadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(constants.ConfigName)
		v.SetConfigType(constants.ConfigFormat)
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		envOnly := errors.As(err, &notFound) && os.Getenv(constants.EnvPrefix+"_DATABASE_HOST") != ""
		if !envOnly {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
