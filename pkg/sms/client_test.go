package sms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/simorq_portal/config"
)

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.SMSConfig
		wantErr     bool
		wantEnabled bool
	}{
		{"disabled", config.SMSConfig{Enabled: false}, false, false},
		{"enabled without api key", config.SMSConfig{Enabled: true}, true, false},
		{"enabled", config.SMSConfig{Enabled: true, SMSIR: config.SMSIRConfig{APIKey: "k", SecretKey: "s"}}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewFromConfig(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnabled, c.IsEnabled())
			assert.Equal(t, "BR", c.Region())
		})
	}
}

func TestSendTemplate_DisabledClient(t *testing.T) {
	client := &Client{enabled: false}

	err := client.SendTemplate(context.Background(), "+5511987654321", "tpl", map[string]string{"name": "Ana"})
	assert.NoError(t, err)
}

func TestSendTemplate_Validation(t *testing.T) {
	client := &Client{enabled: true, region: "BR"}

	tests := []struct {
		name       string
		phone      string
		templateID string
	}{
		{"empty phone number", "", "tpl"},
		{"empty template ID", "+5511987654321", ""},
		{"unparseable phone", "not-a-number", "tpl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.SendTemplate(context.Background(), tt.phone, tt.templateID, nil)
			assert.Error(t, err)
		})
	}
}

func TestTemplate(t *testing.T) {
	c := &Client{templates: map[string]string{"document-published": "1001"}}

	id, err := c.Template("document-published")
	require.NoError(t, err)
	assert.Equal(t, "1001", id)

	_, err = c.Template("news-published")
	assert.ErrorIs(t, err, ErrNoTemplate)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw    string
		region string
		want   string
		ok     bool
	}{
		{"(11) 98765-4321", "BR", "+5511987654321", true},
		{"+55 11 98765-4321", "US", "+5511987654321", true},
		{"0912 123 4567", "IR", "+989121234567", true},
		{"12", "BR", "", false},
		{"", "BR", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Normalize(tt.raw, tt.region)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
