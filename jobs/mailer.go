package jobs

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer delivers a single plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer delivers mail over an unauthenticated SMTP relay, e.g. a local
// Mailpit instance during development.
type SMTPMailer struct {
	addr string
	from string
}

func NewSMTPMailer(host string, port int, from string) *SMTPMailer {
	return &SMTPMailer{addr: fmt.Sprintf("%s:%d", host, port), from: from}
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)
	return smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg.String()))
}
