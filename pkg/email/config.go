package email

import (
	"time"

	"github.com/Alijeyrad/simorq_portal/config"
)

const (
	defaultAppName = "Patient Portal"
	defaultPort    = 587
	defaultTimeout = 30 * time.Second
)

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	// ImplicitTLS dials TLS directly (port 465); otherwise STARTTLS is used
	// when the server offers it.
	ImplicitTLS bool
	Timeout     time.Duration
}

type Config struct {
	Enabled bool
	From    string
	AppName string
	SMTP    SMTP
}

// FromCentralConfig maps the email config block and fills defaults.
func FromCentralConfig(c config.EmailConfig) Config {
	out := Config{
		Enabled: c.Enabled,
		From:    c.From,
		AppName: c.AppName,
		SMTP: SMTP{
			Host:        c.SMTP.Host,
			Port:        c.SMTP.Port,
			Username:    c.SMTP.Username,
			Password:    c.SMTP.Password,
			ImplicitTLS: c.SMTP.UseTLS,
			Timeout:     time.Duration(c.SMTP.TimeoutSeconds) * time.Second,
		},
	}
	return out.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.AppName == "" {
		c.AppName = defaultAppName
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = defaultPort
	}
	if c.SMTP.Timeout <= 0 {
		c.SMTP.Timeout = defaultTimeout
	}
	return c
}
