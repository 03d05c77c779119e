package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/dentallab/backend/pkg/config"
	"github.com/dentallab/backend/pkg/retry"
)

// Mailer sends HTML mail. Callers treat delivery as best-effort: failures
// are logged at the call site and never fail the surrounding operation.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPMailer sends mail through an SMTP relay using go-mail.
type SMTPMailer struct {
	client *mail.Client
	from   string
	retry  *retry.Config
}

// NewSMTPMailer creates a mailer from SMTP configuration.
func NewSMTPMailer(cfg *config.SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(10 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &SMTPMailer{
		client: client,
		from:   cfg.From,
		retry: &retry.Config{
			MaxRetries:      2,
			InitialInterval: time.Second,
			MaxInterval:     5 * time.Second,
			Multiplier:      2.0,
		},
	}, nil
}

// Send delivers a single HTML message, retrying transient SMTP failures.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return retry.Permanent(fmt.Errorf("invalid from address: %w", err))
	}
	if err := msg.To(to); err != nil {
		return retry.Permanent(fmt.Errorf("invalid recipient: %w", err))
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	return retry.Do(ctx, m.retry, func(ctx context.Context) error {
		return m.client.DialAndSendWithContext(ctx, msg)
	})
}
