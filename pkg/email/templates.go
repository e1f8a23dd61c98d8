package email

import (
	"fmt"
	"html"
)

// InviteEmailData feeds the account activation invite.
type InviteEmailData struct {
	Name          string
	Email         string
	ActivationURL string
	ExpiresHours  int
	AppName       string
}

// PublishedEmailData feeds the "new content in your portal" notices.
type PublishedEmailData struct {
	Name      string
	Email     string
	Title     string
	PortalURL string
	AppName   string
}

const layout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #0f766e;">Hello %s,</h2>
    %s
    <p style="text-align: center; margin: 30px 0;">
        <a href="%s" style="background-color: #0f766e; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">%s</a>
    </p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">%s</p>
</body>
</html>`

func withDefaults(name, appName string) (string, string) {
	if appName == "" {
		appName = defaultAppName
	}
	if name == "" {
		name = "there"
	}
	return name, appName
}

// BuildInviteEmail creates the activation invite sent to a patient record.
func BuildInviteEmail(data InviteEmailData) Message {
	name, appName := withDefaults(data.Name, data.AppName)

	subject := fmt.Sprintf("Activate your %s account", appName)

	textBody := fmt.Sprintf(`Hello %s,

Your clinic has created a %s account for you.

Set your password and activate your access here:
%s

This link expires in %d hours and can be used once.

The %s Team`,
		name, appName, data.ActivationURL, data.ExpiresHours, appName)

	htmlBody := fmt.Sprintf(layout,
		html.EscapeString(name),
		fmt.Sprintf(`<p>Your clinic has created a %s account for you.</p>
    <p>Set your password to activate your access.</p>
    <p><em>This link expires in %d hours and can be used once.</em></p>`, html.EscapeString(appName), data.ExpiresHours),
		html.EscapeString(data.ActivationURL),
		"Activate account",
		"The "+html.EscapeString(appName)+" Team")

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildExamPublishedEmail tells a patient a new exam result is available.
func BuildExamPublishedEmail(data PublishedEmailData) Message {
	return buildPublished(data, "New exam result available", "A new exam result is available in your portal")
}

// BuildRecommendationPublishedEmail tells a patient a new recommendation was written for them.
func BuildRecommendationPublishedEmail(data PublishedEmailData) Message {
	return buildPublished(data, "New recommendation from your clinic", "Your clinic published a new recommendation for you")
}

func BuildNewsPublishedEmail(data PublishedEmailData) Message {
	return buildPublished(data, "News from your clinic", "Your clinic published news")
}

func buildPublished(data PublishedEmailData, subject, lead string) Message {
	name, appName := withDefaults(data.Name, data.AppName)

	textBody := fmt.Sprintf(`Hello %s,

%s: %s

Open your portal to read it:
%s

The %s Team`,
		name, lead, data.Title, data.PortalURL, appName)

	htmlBody := fmt.Sprintf(layout,
		html.EscapeString(name),
		fmt.Sprintf(`<p>%s:</p>
    <p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px;"><strong>%s</strong></p>`,
			html.EscapeString(lead), html.EscapeString(data.Title)),
		html.EscapeString(data.PortalURL),
		"Open portal",
		"The "+html.EscapeString(appName)+" Team")

	return Message{
		To:       []string{data.Email},
		Subject:  subject + " | " + appName,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}
