package sms

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/arsmn/go-smsir/smsir"

	"github.com/Alijeyrad/simorq_portal/config"
)

var ErrNoTemplate = errors.New("sms: no template configured")

// Client provides SMS sending functionality via sms.ir.
type Client struct {
	client    *smsir.Client
	enabled   bool
	region    string
	templates map[string]string
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	region := cfg.DefaultRegion
	if region == "" {
		region = "BR"
	}

	if !cfg.Enabled {
		return &Client{enabled: false, region: region}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}

	return &Client{
		client:    smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey),
		enabled:   true,
		region:    region,
		templates: cfg.SMSIR.Templates,
	}, nil
}

// Template returns the sms.ir template id configured for a notification kind.
func (c *Client) Template(kind string) (string, error) {
	id := c.templates[kind]
	if id == "" {
		return "", fmt.Errorf("%w for %q", ErrNoTemplate, kind)
	}
	return id, nil
}

// SendTemplate sends an ultra-fast template message. The phone number is
// normalised to E.164 before sending. No-op when disabled.
func (c *Client) SendTemplate(ctx context.Context, phoneNumber, templateID string, params map[string]string) error {
	if !c.enabled {
		return nil
	}

	if phoneNumber == "" {
		return fmt.Errorf("phone number is required")
	}
	if templateID == "" {
		return fmt.Errorf("template ID is required")
	}

	mobile, err := Normalize(phoneNumber, c.region)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	req := &smsir.UltraFastSendRequest{
		Mobile:     mobile,
		TemplateID: templateID,
	}
	for _, k := range keys {
		req.Parameters = append(req.Parameters, smsir.UltraFastParameter{Key: k, Value: params[k]})
	}

	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}

	return nil
}

func (c *Client) Region() string { return c.region }

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
