// Package email sends portal mail over SMTP with gomail.
package email

import (
	"context"
	"crypto/tls"
	"net/mail"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/Alijeyrad/simorq_portal/config"
)

// Sender is the narrow capability services depend on.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

type Client struct {
	cfg     Config
	deliver func(*gomail.Message) error
}

var _ Sender = (*Client)(nil)

func NewFromCentral(cfg config.EmailConfig) (*Client, error) {
	return New(FromCentralConfig(cfg))
}

func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	c := &Client{cfg: cfg}
	if !cfg.Enabled {
		return c, nil
	}
	if strings.TrimSpace(cfg.SMTP.Host) == "" {
		return nil, ErrInvalidMessage{Reason: "smtp host is required when email is enabled"}
	}
	if _, err := mail.ParseAddress(cfg.From); err != nil {
		return nil, ErrInvalidMessage{Reason: "from address: " + err.Error()}
	}
	d := c.dialer()
	c.deliver = func(m *gomail.Message) error { return d.DialAndSend(m) }
	return c, nil
}

func (c *Client) AppName() string { return c.cfg.AppName }

// Send blocks until the SMTP exchange finishes, ctx is done, or the SMTP
// timeout passes, whichever comes first. gomail has no context support, so an
// abandoned exchange finishes in the background.
func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.cfg.Enabled {
		return ErrDisabled
	}
	msg, err := c.compose(m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.SMTP.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.deliver(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return SendError{Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) dialer() *gomail.Dialer {
	s := c.cfg.SMTP
	d := gomail.NewDialer(s.Host, s.Port, s.Username, s.Password)
	d.SSL = s.ImplicitTLS
	d.TLSConfig = &tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12}
	return d
}

func (c *Client) compose(m Message) (*gomail.Message, error) {
	return buildMessage(c.cfg.From, m)
}

func buildMessage(from string, m Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, ErrInvalidMessage{Reason: "from is required"}
	}
	to, err := recipients(m.To)
	if err != nil {
		return nil, err
	}
	subject := strings.TrimSpace(m.Subject)
	if subject == "" {
		return nil, ErrInvalidMessage{Reason: "subject is required"}
	}
	text, html := strings.TrimSpace(m.TextBody) != "", strings.TrimSpace(m.HTMLBody) != ""
	if !text && !html {
		return nil, ErrInvalidMessage{Reason: "either TextBody or HTMLBody is required"}
	}

	msg := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetDateHeader("Date", time.Now())
	if r := strings.TrimSpace(m.ReplyTo); r != "" {
		msg.SetHeader("Reply-To", r)
	}
	if m.Ref != "" {
		msg.SetHeader("X-Portal-Ref", m.Ref)
	}

	if text {
		msg.SetBody("text/plain", m.TextBody)
		if html {
			msg.AddAlternative("text/html", m.HTMLBody)
		}
	} else {
		msg.SetBody("text/html", m.HTMLBody)
	}
	return msg, nil
}

// recipients drops blanks and rejects anything net/mail cannot parse.
func recipients(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := mail.ParseAddress(s); err != nil {
			return nil, ErrInvalidMessage{Reason: "recipient " + s + ": " + err.Error()}
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, ErrInvalidMessage{Reason: "at least one recipient is required"}
	}
	return out, nil
}
