package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/config"
	"github.com/Alijeyrad/simorq_portal/pkg/email"
)

// Recipient is a patient as dispatch sees it.
type Recipient struct {
	PatientID uuid.UUID
	Name      string
	Email     string
	Phone     *string
}

// Content is the rendered, channel-independent part of a notification.
type Content struct {
	Kind      Kind
	SubjectID uuid.UUID
	Title     string
	PortalURL string
}

// Channel delivers one notification to one recipient.
type Channel interface {
	Name() string
	// Destination returns the address used for r, or false when r cannot be reached.
	Destination(r Recipient) (string, bool)
	Send(ctx context.Context, r Recipient, c Content) error
}

// ---------------------------------------------------------------------------
// Email
// ---------------------------------------------------------------------------

type EmailChannel struct {
	sender  email.Sender
	appName string
}

func NewEmailChannel(sender email.Sender, cfg config.EmailConfig) *EmailChannel {
	return &EmailChannel{sender: sender, appName: cfg.AppName}
}

func (c *EmailChannel) Name() string { return config.ChannelEmail }

func (c *EmailChannel) Destination(r Recipient) (string, bool) {
	return r.Email, r.Email != ""
}

func (c *EmailChannel) Send(ctx context.Context, r Recipient, content Content) error {
	data := email.PublishedEmailData{
		Name:      r.Name,
		Email:     r.Email,
		Title:     content.Title,
		PortalURL: content.PortalURL,
		AppName:   c.appName,
	}

	var msg email.Message
	switch content.Kind {
	case KindDocumentPublished:
		msg = email.BuildExamPublishedEmail(data)
	case KindRecommendationPublished:
		msg = email.BuildRecommendationPublishedEmail(data)
	case KindNewsPublished:
		msg = email.BuildNewsPublishedEmail(data)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, content.Kind)
	}
	msg.Ref = string(content.Kind) + "/" + content.SubjectID.String()
	return c.sender.Send(ctx, msg)
}

// ---------------------------------------------------------------------------
// SMS
// ---------------------------------------------------------------------------

// TemplateSender is satisfied by *sms.Client.
type TemplateSender interface {
	Template(kind string) (string, error)
	SendTemplate(ctx context.Context, phone, templateID string, params map[string]string) error
}

type SMSChannel struct {
	sender TemplateSender
}

func NewSMSChannel(sender TemplateSender) *SMSChannel {
	return &SMSChannel{sender: sender}
}

func (c *SMSChannel) Name() string { return config.ChannelSMS }

func (c *SMSChannel) Destination(r Recipient) (string, bool) {
	if r.Phone == nil || *r.Phone == "" {
		return "", false
	}
	return *r.Phone, true
}

func (c *SMSChannel) Send(ctx context.Context, r Recipient, content Content) error {
	phone, ok := c.Destination(r)
	if !ok {
		return ErrNoDestination
	}
	templateID, err := c.sender.Template(string(content.Kind))
	if err != nil {
		return err
	}
	return c.sender.SendTemplate(ctx, phone, templateID, map[string]string{
		"name":  r.Name,
		"title": content.Title,
		"link":  content.PortalURL,
	})
}
