// Package mail sends appointment mails over SMTP.
package mail

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/mediochat/mediochat/internal/core"
)

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (m *SMTPMailer) Send(msg core.Mail) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)
	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer is wired when no SMTP host is configured; it only logs.
type LogMailer struct{}

func (LogMailer) Send(msg core.Mail) error {
	log.Info().Str("module", "adapters.mail").Str("to", msg.To).
		Str("subject", msg.Subject).Msg("mail (not sent, smtp not configured)")
	return nil
}
