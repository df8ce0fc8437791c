package mailer

import "context"

// Message is a fully rendered outbound email.
type Message struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Mailer defines the outbound email port. Implementations must not retry:
// a failed send is the caller's signal to record the failure and move on.
type Mailer interface {
	// Send dispatches a single message. An empty From falls back to the
	// adapter's configured sender.
	Send(ctx context.Context, msg Message) error
}
