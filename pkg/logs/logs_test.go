package logs

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/simorq_portal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewWritesToRotatedFileAndStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.log")

	cfg := &config.Config{}
	cfg.Server.Environment = "production"
	cfg.Logging.Level = "info"
	cfg.Logging.Output.Stdout = true
	cfg.Logging.Output.File = config.FileLogConfig{Enabled: true, Path: path, MaxSizeMB: 1}

	logger, flush := New(cfg)
	defer flush()

	logger.Info("activation: linked", "patient_id", "p-1")
	logger.Debug("dropped")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"activation: linked"`)
	assert.Contains(t, string(b), `"env":"production"`)
	assert.NotContains(t, string(b), "dropped")
}

func TestNewRedactsBearerSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.log")

	cfg := &config.Config{}
	cfg.Server.Environment = "production"
	cfg.Logging.Output.File = config.FileLogConfig{Enabled: true, Path: path, MaxSizeMB: 1}

	logger, flush := New(cfg)
	defer flush()

	logger.Warn("share: resolve failed", "token", "s3cr3t-token", "Password", "hunter2", "exam_id", "e-1")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.NotContains(t, out, "s3cr3t-token")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, `"token":"[redacted]"`)
	assert.Contains(t, out, `"exam_id":"e-1"`)
}
