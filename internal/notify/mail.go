package notify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"text/template"
	"time"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(
	`Hello {{if .Name}}{{.Name}}{{else}}there{{end}},

Your reservation #{{.ReservationID}} has been received.

  Table:  {{.TableID}}{{if .Location}} ({{.Location}}){{end}}
  Date:   {{.Date}}
  Time:   {{.Time}}
  People: {{.People}}

We look forward to seeing you.
`))

// RenderConfirmation returns the subject and plain-text body of the
// confirmation mail.
func RenderConfirmation(ev ReservationCreated) (string, string, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, ev); err != nil {
		return "", "", fmt.Errorf("render confirmation: %w", err)
	}
	subject := fmt.Sprintf("Reservation confirmed for %s at %s", ev.Date, ev.Time)
	return subject, buf.String(), nil
}

type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Now      func() time.Time
}

func (m *SMTPMailer) addr() string { return net.JoinHostPort(m.Host, strconv.Itoa(m.Port)) }

// Send blocks until the server accepts the message. ctx only gates the
// start; net/smtp has no cancellation.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	return smtp.SendMail(m.addr(), auth, m.From, []string{to}, m.message(to, subject, body))
}

func (m *SMTPMailer) message(to, subject, body string) []byte {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
