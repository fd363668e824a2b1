package service

import "context"

// MailSender delivers outbound mail. Implementations must bound the
// transport call with a timeout; callers treat delivery as best-effort
// and never roll back state when it fails.
type MailSender interface {
	// Send delivers a plain-text message to a single recipient.
	Send(ctx context.Context, to, subject, body string) error
}
