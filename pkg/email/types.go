package email

// Message is one outbound mail. At least one body part is required; when both
// are set the HTML part is sent as the alternative.
type Message struct {
	To       []string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string

	// Ref is written to X-Portal-Ref so bounces can be traced to a log row.
	Ref string
}
