package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig holds the SMTP server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPNotifier sends plain-text notification mail over SMTP.
//
// Works with Mailhog (no auth) in development and any authenticated SMTP
// relay in production.
type SMTPNotifier struct {
	config SMTPConfig
	logger *slog.Logger
}

// NewSMTPNotifier creates an SMTP-backed Notifier.
func NewSMTPNotifier(config SMTPConfig, logger *slog.Logger) *SMTPNotifier {
	return &SMTPNotifier{config: config, logger: logger}
}

// SendListingApproved tells the owner their listing is now public.
func (n *SMTPNotifier) SendListingApproved(ctx context.Context, to, title string) error {
	subject := fmt.Sprintf("Your listing %q has been approved", title)
	body := fmt.Sprintf("Good news! Your listing %q has been approved and is now visible to the public.", title)
	return n.send(ctx, to, subject, body)
}

// SendListingRejected tells the owner their listing was rejected and why.
func (n *SMTPNotifier) SendListingRejected(ctx context.Context, to, title, reason string) error {
	subject := fmt.Sprintf("Your listing %q was not approved", title)
	body := fmt.Sprintf("Your listing %q was not approved.", title)
	if reason != "" {
		body += "\n\nReason: " + reason
	}
	return n.send(ctx, to, subject, body)
}

func (n *SMTPNotifier) send(ctx context.Context, to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", n.config.FromName, n.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", n.config.Host, n.config.Port)

	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}

	// net/smtp has no context support; bound the call so a wedged relay
	// cannot stall the caller indefinitely.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, n.config.From, []string{to}, []byte(msg.String()))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", to, err)
		}
		n.logger.Debug("notification mail sent", "to", to, "subject", subject)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(30 * time.Second):
		return fmt.Errorf("send mail to %s: timeout", to)
	}
}
