package utils

import (
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// Attachment is an in-memory file sent along with an email.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Mailer sends HTML emails over SMTP.
type Mailer interface {
	Send(to []string, subject, html string, files ...Attachment) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{dialer: gomail.NewDialer(host, port, user, password), from: from}
}

func (m *SMTPMailer) Send(to []string, subject, html string, files ...Attachment) error {
	if len(to) == 0 {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	for _, f := range files {
		data := f.Data
		msg.Attach(f.Name,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {f.ContentType}}),
		)
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
