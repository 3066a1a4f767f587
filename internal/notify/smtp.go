package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/josegonzalo071-svg/house-backend/internal/common"
)

// SMTPConfig holds the mail transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier delivers messages over SMTP.
type SMTPNotifier struct {
	cfg SMTPConfig

	// dialAndSend is a seam for tests.
	dialAndSend func(ctx context.Context, c *mail.Client, m *mail.Msg) error
}

// NewSMTPNotifier constructs a Notifier for the given transport settings.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		cfg: cfg,
		dialAndSend: func(ctx context.Context, c *mail.Client, m *mail.Msg) error {
			return c.DialAndSendWithContext(ctx, m)
		},
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, toEmail, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotifyFailed, err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotifyFailed, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotifyFailed, err)
	}

	if err := n.dialAndSend(ctx, client, msg); err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotifyFailed, err)
	}
	return nil
}
