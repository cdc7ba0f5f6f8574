package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"reviewhub/internal/config"
)

// Mailer dispatches confirmation codes. Fire-and-forget at the call site;
// delivery failures are logged, never surfaced to the client.
type Mailer interface {
	SendConfirmationCode(to, username, code string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg *config.Config) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.AdminEmail,
	}
}

func (m *smtpMailer) SendConfirmationCode(to, username, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your confirmation code")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour confirmation code for obtaining an access token is: %s\n", username, code))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send confirmation code: %w", err)
	}
	return nil
}
