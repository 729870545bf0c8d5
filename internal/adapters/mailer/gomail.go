// Package mailer sends site notifications over SMTP.
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/qudratrading/mawared/internal/domain"
)

type SMTP struct {
	dialer *gomail.Dialer
	from   string
	to     []string
}

func NewSMTP(host string, port int, user, pass, from string, to []string) *SMTP {
	return &SMTP{dialer: gomail.NewDialer(host, port, user, pass), from: from, to: to}
}

func (s *SMTP) Send(m domain.Mail) error {
	if s.from == "" || len(s.to) == 0 {
		return fmt.Errorf("mailer: sender or recipients not configured")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", s.to...)
	if m.ReplyTo != "" {
		msg.SetHeader("Reply-To", m.ReplyTo)
	}
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)
	return s.dialer.DialAndSend(msg)
}
