package mail

import (
	"errors"
	"fmt"

	"github.com/andy/facturas/internal/config"
	"github.com/go-gomail/gomail"
)

// ErrNotConfigured is returned when no SMTP host is set
var ErrNotConfigured = errors.New("mail is not configured: set mail.host in the config file")

// Message is an email with file attachments
type Message struct {
	To          string
	Subject     string
	Body        string // HTML
	Attachments []string
}

// Mailer delivers messages
type Mailer interface {
	Send(msg *Message) error
}

// SMTPMailer sends mail through an SMTP server
type SMTPMailer struct {
	cfg config.MailConfig
}

// NewSMTPMailer creates a mailer for the configured server
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send builds the message and delivers it in one SMTP session
func (m *SMTPMailer) Send(msg *Message) error {
	if m.cfg.Host == "" {
		return ErrNotConfigured
	}
	if msg.To == "" {
		return errors.New("recipient is required")
	}

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(m.build(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) build(msg *Message) *gomail.Message {
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	g := gomail.NewMessage()
	g.SetHeader("From", from)
	g.SetHeader("To", msg.To)
	g.SetHeader("Subject", msg.Subject)
	g.SetBody("text/html", msg.Body)
	for _, f := range msg.Attachments {
		g.Attach(f)
	}
	return g
}
