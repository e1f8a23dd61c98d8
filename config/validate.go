package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	TransportLocal = "local"
	TransportNats  = "nats"

	ChannelEmail = "email"
	ChannelSMS   = "sms"

	DefaultMinPasswordLength = 6
)

// ApplyDefaults fills zero values with the documented defaults. Fields that
// are meaningful at zero (share.default_ttl_hours) are left alone.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = 15
	}
	if c.Server.PublicRateLimit.Max == 0 {
		c.Server.PublicRateLimit.Max = 20
	}
	if c.Server.PublicRateLimit.ExpirationSeconds == 0 {
		c.Server.PublicRateLimit.ExpirationSeconds = 30
	}

	if c.Portal.ActivationPath == "" {
		c.Portal.ActivationPath = "/paciente/ativar"
	}
	if c.Portal.PortalPath == "" {
		c.Portal.PortalPath = "/paciente/portal"
	}
	if c.Portal.SharePath == "" {
		c.Portal.SharePath = "/r"
	}

	if c.Activation.TTLHours == 0 {
		c.Activation.TTLHours = 48
	}
	if c.Activation.MinPasswordLength == 0 {
		c.Activation.MinPasswordLength = DefaultMinPasswordLength
	}

	if c.Share.SignedURLTTLSeconds == 0 {
		c.Share.SignedURLTTLSeconds = 3600
	}

	if c.Notification.Transport == "" {
		c.Notification.Transport = TransportLocal
	}
	if c.Notification.MaxParallel == 0 {
		c.Notification.MaxParallel = 8
	}
	if c.Notification.SendTimeoutSeconds == 0 {
		c.Notification.SendTimeoutSeconds = 30
	}
	if len(c.Notification.Channels) == 0 {
		c.Notification.Channels = []string{ChannelEmail}
	}
	if c.Notification.SubjectPrefix == "" {
		c.Notification.SubjectPrefix = "portal.notification"
	}
	if c.Notification.QueueGroup == "" {
		c.Notification.QueueGroup = "notification-dispatch"
	}

	if c.Codes.TokenByteLength == 0 {
		c.Codes.TokenByteLength = 32
	}
	if c.SMS.DefaultRegion == "" {
		c.SMS.DefaultRegion = "BR"
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Portal.PublicBaseURL == "" {
		errs = append(errs, errors.New("portal.public_base_url is required"))
	} else if u, err := url.Parse(c.Portal.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("portal.public_base_url %q is not an absolute URL", c.Portal.PublicBaseURL))
	}

	if c.Activation.TTLHours <= 0 {
		errs = append(errs, errors.New("activation.ttl_hours must be positive"))
	}
	if c.Activation.MinPasswordLength < 1 {
		errs = append(errs, errors.New("activation.min_password_length must be at least 1"))
	}
	if c.Activation.InviteCooldownSeconds < 0 {
		errs = append(errs, errors.New("activation.invite_cooldown_seconds must not be negative"))
	}

	if c.Share.DefaultTTLHours < 0 {
		errs = append(errs, errors.New("share.default_ttl_hours must not be negative"))
	}
	if c.Share.SignedURLTTLSeconds <= 0 {
		errs = append(errs, errors.New("share.signed_url_ttl_seconds must be positive"))
	}

	switch c.Notification.Transport {
	case TransportLocal:
	case TransportNats:
		if c.Nats.URL == "" {
			errs = append(errs, errors.New("nats.url is required when notification.transport is nats"))
		}
	default:
		errs = append(errs, fmt.Errorf("notification.transport %q is not one of local, nats", c.Notification.Transport))
	}
	if c.Notification.MaxParallel <= 0 {
		errs = append(errs, errors.New("notification.max_parallel must be positive"))
	}
	if c.Notification.SendTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("notification.send_timeout_seconds must be positive"))
	}
	for _, ch := range c.Notification.Channels {
		switch strings.ToLower(ch) {
		case ChannelEmail, ChannelSMS:
		default:
			errs = append(errs, fmt.Errorf("notification.channels: unknown channel %q", ch))
		}
	}

	if c.Codes.TokenByteLength < 16 {
		errs = append(errs, errors.New("codes.token_byte_length must be at least 16"))
	}

	return errors.Join(errs...)
}

// ActivationURL builds the link sent in invites.
func (c *Config) ActivationURL(token string) string {
	return c.baseURL() + c.Portal.ActivationPath + "?token=" + url.QueryEscape(token)
}

func (c *Config) ShareURL(token string) string {
	return c.baseURL() + strings.TrimRight(c.Portal.SharePath, "/") + "/" + url.PathEscape(token)
}

func (c *Config) PortalURL() string {
	return c.baseURL() + c.Portal.PortalPath
}

func (c *Config) baseURL() string {
	return strings.TrimRight(c.Portal.PublicBaseURL, "/")
}
