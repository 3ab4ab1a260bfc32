package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"agency-contact-api/internal/domain"

	"github.com/google/uuid"
)

// SMTPConfig holds the SMTP relay settings
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string // Verified sender; falls back to Username
	Inbox    string
}

// sendFunc delivers one raw message; swapped out in tests
type sendFunc func(ctx context.Context, cfg SMTPConfig, from string, to []string, msg []byte) error

// SMTPTransport handles sending emails via SMTP
type SMTPTransport struct {
	cfg       SMTPConfig
	autoReply bool
	send      sendFunc
}

func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPTransport{cfg: cfg, send: sendMailContext}
}

func NewSMTPAutoReply(cfg SMTPConfig) *SMTPTransport {
	t := NewSMTPTransport(cfg)
	t.autoReply = true
	return t
}

func (t *SMTPTransport) Name() string {
	if t.autoReply {
		return "smtp_auto_reply"
	}
	return "smtp"
}

// Send renders the message and delivers it to the inbox (or to the submitter for auto-replies)
func (t *SMTPTransport) Send(ctx context.Context, p *domain.Payload) error {
	var (
		msg     *message
		err     error
		to      string
		replyTo string
	)
	if t.autoReply {
		msg, err = renderAutoReply(p)
		to, replyTo = p.Email, t.cfg.Inbox
	} else {
		msg, err = renderNotification(p)
		to, replyTo = t.cfg.Inbox, p.Email
	}
	if err != nil {
		return &domain.TransportError{Provider: t.Name(), Err: err}
	}

	raw := buildMIME(t.cfg.From, to, replyTo, msg)
	if err := t.send(ctx, t.cfg, t.cfg.From, []string{to}, raw); err != nil {
		return transportFailure(t.Name(), fmt.Errorf("failed to send email: %w", err))
	}
	return nil
}

// buildMIME constructs a multipart/alternative message with text and HTML parts
func buildMIME(from, to, replyTo string, msg *message) []byte {
	boundary := "contact-" + uuid.NewString()

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sanitizeHeader(from))
	fmt.Fprintf(&b, "To: %s\r\n", sanitizeHeader(to))
	if replyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", sanitizeHeader(replyTo))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", sanitizeHeader(msg.Subject)))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.Text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

// sendMailContext is smtp.SendMail with the dial and the whole exchange bound to ctx
func sendMailContext(ctx context.Context, cfg SMTPConfig, from string, to []string, msg []byte) error {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return err
		}
	}
	if cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
