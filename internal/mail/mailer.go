// Package mail delivers generated reports to users over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html"

	gomail "github.com/wneessen/go-mail"

	"finlog/internal/report"
)

// Sender is the delivery port used by the worker. Split from the SMTP
// implementation so tests can capture outgoing mail.
type Sender interface {
	SendReport(ctx context.Context, to, name string, meta report.Metadata, artifact []byte, comment string) error
}

type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewMailer(host string, port int, user, pass, from string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from}
}

// SendReport emails one report as an attachment with a short HTML body.
// The attachment filename is the artifact's storage name so support can
// match an email back to the stored file.
func (m *Mailer) SendReport(ctx context.Context, to, name string, meta report.Metadata, artifact []byte, comment string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}

	msg.Subject(fmt.Sprintf("Your spending report: %s", meta.PeriodLabel))
	msg.SetBodyString(gomail.TypeTextHTML, buildBody(name, meta, comment))

	if err := msg.AttachReader(meta.StorageLocation, bytes.NewReader(artifact)); err != nil {
		return fmt.Errorf("attach report: %w", err)
	}

	client, err := gomail.NewClient(m.host,
		gomail.WithPort(m.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.user),
		gomail.WithPassword(m.pass),
	)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func buildBody(name string, meta report.Metadata, comment string) string {
	greeting := "Hi"
	if name != "" {
		greeting = "Hi " + html.EscapeString(name)
	}
	return fmt.Sprintf(
		`<p>%s,</p>
<p>Your spending report for <strong>%s</strong> is attached.</p>
<p>%s</p>
<p>The finlog team</p>`,
		greeting,
		html.EscapeString(meta.PeriodLabel),
		html.EscapeString(comment),
	)
}
