package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/noah-isme/church-events-api/pkg/config"
)

// Attachment is a file added to an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a multipart email with a plain text body, an optional HTML
// alternative and optional attachments.
type Message struct {
	To          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Dialer opens an SMTP session and delivers messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends mail through an SMTP relay, opening a new connection per send.
type Mailer struct {
	dialer   Dialer
	from     string
	fromName string
}

// New builds a Mailer from SMTP settings. Secure selects implicit TLS
// (usually port 465); otherwise STARTTLS is negotiated when offered.
func New(cfg config.SMTPConfig) *Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.Secure
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	return NewWithDialer(d, cfg.From, cfg.FromName)
}

// NewWithDialer builds a Mailer around an existing dialer.
func NewWithDialer(d Dialer, from, fromName string) *Mailer {
	return &Mailer{dialer: d, from: from, fromName: fromName}
}

// Send delivers msg. The context is only checked before dialing because the
// SMTP client does not support cancellation mid-session.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return errors.New("mailer: no recipients")
	}

	gm := m.build(msg)
	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("send mail to %v: %w", msg.To, err)
	}
	return nil
}

func (m *Mailer) build(msg Message) *gomail.Message {
	gm := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	if m.fromName != "" {
		gm.SetAddressHeader("From", m.from, m.fromName)
	} else {
		gm.SetHeader("From", m.from)
	}
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	for _, att := range msg.Attachments {
		data := att.Data
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		gm.Attach(att.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {contentType}}),
		)
	}
	return gm
}
