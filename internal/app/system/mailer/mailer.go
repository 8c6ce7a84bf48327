// Package mailer delivers lifecycle notifications (credential delivery,
// tenant status changes). Delivery failures are the caller's to log;
// no lifecycle operation is ever rolled back because an email failed.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Email is a single outbound message with both text and HTML bodies.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers an Email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// SMTPSender sends mail through a plain SMTP relay (Mailpit in dev,
// SES SMTP or similar in production).
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

func (s *SMTPSender) Send(ctx context.Context, e Email) error {
	if e.To == "" {
		return fmt.Errorf("mailer: empty recipient")
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	msg := s.buildMessage(e)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, s.From, []string{e.To}, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mailer: send to %s: %w", e.To, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SMTPSender) buildMessage(e Email) []byte {
	from := s.From
	if s.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.FromName, s.From)
	}

	const boundary = "quizhub-alt-boundary"
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, e.TextBody)
	if e.HTMLBody != "" {
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, e.HTMLBody)
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

// LogSender logs messages instead of delivering them. Used in dev and
// in tests.
type LogSender struct {
	Log *zap.Logger
}

func (l *LogSender) Send(ctx context.Context, e Email) error {
	l.Log.Info("email (not sent)",
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
		zap.String("text_body", e.TextBody))
	return nil
}
