package mail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/yuin/goldmark"
	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier renders invites from Markdown and sends them as
// multipart/alternative (plain text + HTML) over SMTP.
type SMTPNotifier struct {
	from string
	md   goldmark.Markdown
	send func(m *gomail.Message) error
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPNotifier{
		from: cfg.From,
		md:   goldmark.New(),
		send: func(m *gomail.Message) error { return d.DialAndSend(m) },
	}
}

var inviteTemplate = template.Must(template.New("invite").Parse(`# You're invited to administer Lost & Found

{{if .InvitedBy}}**{{.InvitedBy}}** has invited you{{else}}You have been invited{{end}} to become an administrator of the Lost & Found platform.

[Accept the invitation]({{.AcceptURL}})

If the button does not work, paste this link into your browser:

{{.AcceptURL}}

The link expires on **{{.ExpiresAt.UTC.Format "Mon, 02 Jan 2006 15:04 MST"}}** and can be used once.
If you were not expecting this email you can ignore it.
`))

func (n *SMTPNotifier) SendAdminInvite(ctx context.Context, msg AdminInvite) error {
	text, html, err := n.render(msg)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", "You're invited to become a Lost & Found admin")
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.send(m); err != nil {
		return fmt.Errorf("mail: send invite: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) render(msg AdminInvite) (text, html string, err error) {
	var src bytes.Buffer
	if err := inviteTemplate.Execute(&src, msg); err != nil {
		return "", "", fmt.Errorf("mail: render template: %w", err)
	}

	var out bytes.Buffer
	if err := n.md.Convert(src.Bytes(), &out); err != nil {
		return "", "", fmt.Errorf("mail: render markdown: %w", err)
	}
	return src.String(), out.String(), nil
}

// LogNotifier writes invites to the log instead of sending them. It is used
// when no SMTP relay is configured so invites can still be handed out
// manually from the create/resend response.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) SendAdminInvite(ctx context.Context, msg AdminInvite) error {
	n.Logger.InfoContext(ctx, "admin invite not emailed (no SMTP relay configured)",
		slog.String("to", msg.To),
		slog.Time("expires_at", msg.ExpiresAt),
	)
	return nil
}
