package mail

import (
	"context"
	"fmt"

	"r2d2-service/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Message is a plain text notification email.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Transport submits one message to the outbound mail server.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

type smtpTransport struct {
	dialer *gomail.Dialer
	log    *zap.SugaredLogger
}

// NewSMTPTransport authenticates with user/password when a user is configured. The
// connection is upgraded with STARTTLS whenever the server offers it, and port 465
// uses implicit TLS.
func NewSMTPTransport(cfg config.SMTPConfig, log *zap.SugaredLogger) Transport {
	log.Infow("Initializing SMTP transport", "host", cfg.Host, "port", cfg.Port, "user", cfg.User)
	return &smtpTransport{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		log:    log,
	}
}

// Send gives up when ctx is done. gomail bounds the dial itself, but an SMTP session
// that is already under way cannot be interrupted: it keeps running in the background
// and the email may still be delivered after Send has returned the context error. The
// late outcome is logged so it can be matched with the record.
func (t *smtpTransport) Send(ctx context.Context, msg Message) error {
	m := buildMessage(msg)

	done := make(chan error, 1)
	go func() {
		done <- t.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp %s:%d: %w", t.dialer.Host, t.dialer.Port, err)
		}
		return nil
	case <-ctx.Done():
		t.log.Warnw("Gave up waiting for SMTP server, the email may still be delivered",
			"to", msg.To, "subject", msg.Subject, "error", ctx.Err())
		go t.logLateResult(msg, done)
		return fmt.Errorf("smtp %s:%d: %w", t.dialer.Host, t.dialer.Port, ctx.Err())
	}
}

func (t *smtpTransport) logLateResult(msg Message, done <-chan error) {
	if err := <-done; err != nil {
		t.log.Infow("Abandoned SMTP session failed", "to", msg.To, "subject", msg.Subject, "error", err)
		return
	}
	t.log.Warnw("Abandoned SMTP session delivered the email after its timeout",
		"to", msg.To, "subject", msg.Subject)
}

func buildMessage(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetBody("text/plain", msg.Body)
	return m
}
