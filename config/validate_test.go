package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	c := &Config{}
	c.Portal.PublicBaseURL = "https://portal.example.com/"
	c.ApplyDefaults()
	return c
}

func TestApplyDefaults(t *testing.T) {
	c := validConfig()

	assert.Equal(t, 48, c.Activation.TTLHours)
	assert.Equal(t, 6, c.Activation.MinPasswordLength)
	assert.Equal(t, 0, c.Share.DefaultTTLHours)
	assert.Equal(t, 3600, c.Share.SignedURLTTLSeconds)
	assert.Equal(t, TransportLocal, c.Notification.Transport)
	assert.Equal(t, []string{ChannelEmail}, c.Notification.Channels)
	assert.Equal(t, 32, c.Codes.TokenByteLength)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing base url", func(c *Config) { c.Portal.PublicBaseURL = "" }, "portal.public_base_url is required"},
		{"relative base url", func(c *Config) { c.Portal.PublicBaseURL = "/portal" }, "not an absolute URL"},
		{"non-positive activation ttl", func(c *Config) { c.Activation.TTLHours = -1 }, "activation.ttl_hours"},
		{"negative share ttl", func(c *Config) { c.Share.DefaultTTLHours = -2 }, "share.default_ttl_hours"},
		{"unknown transport", func(c *Config) { c.Notification.Transport = "kafka" }, "notification.transport"},
		{"nats without url", func(c *Config) { c.Notification.Transport = TransportNats }, "nats.url is required"},
		{"unknown channel", func(c *Config) { c.Notification.Channels = []string{"email", "fax"} }, `unknown channel "fax"`},
		{"short tokens", func(c *Config) { c.Codes.TokenByteLength = 8 }, "codes.token_byte_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPortalURLs(t *testing.T) {
	c := validConfig()

	assert.Equal(t, "https://portal.example.com/paciente/ativar?token=abc-_1", c.ActivationURL("abc-_1"))
	assert.Equal(t, "https://portal.example.com/r/abc-_1", c.ShareURL("abc-_1"))
	assert.Equal(t, "https://portal.example.com/paciente/portal", c.PortalURL())
}
