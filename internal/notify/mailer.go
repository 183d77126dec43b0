package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"frontdesk/internal/platform/config"
)

// Sender delivers operational emails to organization owners.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Mailer struct {
	mg  *mailgun.MailgunImpl
	cfg config.EmailConfig
}

func NewMailer(cfg config.EmailConfig) *Mailer {
	return &Mailer{
		mg:  mailgun.NewMailgun(cfg.Domain, cfg.APIKey),
		cfg: cfg,
	}
}

func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if !m.cfg.Enabled {
		return nil
	}

	from := fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromAddress)
	message := m.mg.NewMessage(from, subject, body, to)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, _, err := m.mg.Send(ctx, message)
	return err
}
