// Package email notifies listing owners about review decisions.
//
// The core only exposes the resulting status and reason; mail delivery is
// out of band and best-effort. Failures are logged by callers, never
// propagated into the review flow.
package email

import "context"

// Notifier is informed whenever a listing transitions to approved or
// rejected.
//
// Implementations:
// - SMTPNotifier: plain-text mail over SMTP (Mailhog in dev)
// - NopNotifier: discards everything, used when SMTP is not configured
type Notifier interface {
	// SendListingApproved tells the owner their listing is now public.
	SendListingApproved(ctx context.Context, to, title string) error

	// SendListingRejected tells the owner their listing was rejected and why.
	SendListingRejected(ctx context.Context, to, title, reason string) error
}

// NopNotifier implements Notifier by doing nothing.
type NopNotifier struct{}

func (NopNotifier) SendListingApproved(context.Context, string, string) error {
	return nil
}

func (NopNotifier) SendListingRejected(context.Context, string, string, string) error {
	return nil
}
