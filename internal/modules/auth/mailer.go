package auth

import (
	"context"
	"fmt"
	"html"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (m *SMTPMailer) SendPasswordReset(_ context.Context, email, link string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Redefinição de senha")
	msg.SetBody("text/html", resetBody(link))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

func resetBody(link string) string {
	safe := html.EscapeString(link)
	return fmt.Sprintf(`<p>Recebemos um pedido para redefinir sua senha.</p>
<p><a href="%s">Redefinir senha</a></p>
<p>Se não foi você, ignore este e-mail.</p>`, safe)
}

// NopMailer only logs. Used when SMTP is not configured.
type NopMailer struct {
	log *zap.Logger
}

func NewNopMailer(log *zap.Logger) *NopMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &NopMailer{log: log}
}

func (m *NopMailer) SendPasswordReset(_ context.Context, email, _ string) error {
	m.log.Info("password reset mail skipped, smtp disabled", zap.String("email", email))
	return nil
}
