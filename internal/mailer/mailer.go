package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

const securePort = 465

// Settings carries the SMTP connection parameters for one dispatch.
type Settings struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

// Dispatcher sends single messages through a configured SMTP relay.
// Retrying is a job-level concern; the dispatcher never retries.
type Dispatcher interface {
	Send(settings Settings, to, subject, html string, attachments ...string) error
	Verify(settings Settings) (bool, string)
}

type GomailDispatcher struct{}

func NewDispatcher() Dispatcher {
	return &GomailDispatcher{}
}

func (d *GomailDispatcher) dialer(settings Settings) *gomail.Dialer {
	dialer := gomail.NewDialer(settings.Host, settings.Port, settings.Username, settings.Password)
	// Implicit TLS on the secure SMTP port, opportunistic STARTTLS otherwise
	dialer.SSL = settings.Port == securePort
	return dialer
}

// Send delivers one message. Attachment paths that are empty are skipped.
func (d *GomailDispatcher) Send(settings Settings, to, subject, html string, attachments ...string) error {
	m := gomail.NewMessage()

	from := settings.FromEmail
	if from == "" {
		from = settings.Username
	}
	if settings.FromName != "" {
		m.SetHeader("From", m.FormatAddress(from, settings.FromName))
	} else {
		m.SetHeader("From", from)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	for _, path := range attachments {
		if path == "" {
			continue
		}
		m.Attach(path)
	}

	if err := d.dialer(settings).DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send error: %w", err)
	}
	return nil
}

// Verify checks connectivity and authentication without sending.
// It never returns an error: failures come back as a negative result
// with the relay's diagnostic text, since this backs a user-facing check.
func (d *GomailDispatcher) Verify(settings Settings) (bool, string) {
	if settings.Host == "" || settings.Port == 0 {
		return false, "SMTP host and port are required"
	}

	closer, err := d.dialer(settings).Dial()
	if err != nil {
		return false, fmt.Sprintf("connection failed: %v", err)
	}
	closer.Close()

	return true, "SMTP connection verified"
}
