package notifiers

import (
	"context"
	"github.com/ilindan-dev/slot-watcher/internal/config"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// EmailNotifier sends messages via SMTP.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     string
	logger zerolog.Logger
}

// NewEmailNotifier creates a new instance of EmailNotifier.
func NewEmailNotifier(cfg config.EmailConfig, logger *zerolog.Logger) *EmailNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &EmailNotifier{
		dialer: d,
		from:   cfg.From,
		to:     cfg.To,
		logger: logger.With().Str("component", "email_notifier").Logger(),
	}
}

// Send implements the Notifier interface for email.
func (n *EmailNotifier) Send(_ context.Context, m *model.Message) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", n.to)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)

	// DialAndSend opens a connection, sends the email, and closes it.
	if err := n.dialer.DialAndSend(msg); err != nil {
		n.logger.Error().Err(err).Stringer("message_id", m.ID).Msg("failed to send email")
		return err
	}

	n.logger.Info().Stringer("message_id", m.ID).Str("recipient", n.to).Msg("email sent successfully")
	return nil
}
