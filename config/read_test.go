package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
portal:
  public_base_url: https://portal.example.com
share:
  default_ttl_hours: 72
database:
  host: db.internal
`

func TestReadConfigFileOrDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sampleYAML), 0o600))

	for _, path := range []string{file, dir} {
		cfg, err := ReadConfig(path)
		require.NoError(t, err, path)
		assert.Equal(t, 72, cfg.Share.DefaultTTLHours)
		assert.Equal(t, 48, cfg.Activation.TTLHours, "defaults still apply")
	}
}

func TestReadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "portal.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sampleYAML), 0o600))
	t.Setenv("PORTAL_DATABASE_HOST", "db.override")

	cfg, err := ReadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "db.override", cfg.Database.Host)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	assert.ErrorContains(t, err, "read config")
}
