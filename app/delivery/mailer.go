package delivery

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"
)

const (
	DefaultSMTPPort = 587
	smtpTimeout     = 30 * time.Second
	// Port for SMTP over implicit TLS; every other port upgrades with STARTTLS.
	smtpsPort = 465
)

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}

// Ready reports whether every setting needed to attempt delivery is present.
func (c MailConfig) Ready() bool {
	return c.Host != "" && c.User != "" && c.Password != "" && c.To != ""
}

type Mailer struct {
	cfg MailConfig
	now func() time.Time
}

func NewMailer(cfg MailConfig) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = DefaultSMTPPort
	}
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return &Mailer{cfg: cfg, now: time.Now}
}

// Send delivers one HTML message over an encrypted session.
func (m *Mailer) Send(ctx context.Context, subject, htmlBody string) error {
	msg, err := m.buildMessage(subject, htmlBody)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	client, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Auth(smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(m.cfg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return client.Quit()
}

func (m *Mailer) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	tlsConfig := &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}

	dialCtx, cancel := context.WithTimeout(ctx, smtpTimeout)
	defer cancel()

	var conn net.Conn
	var err error
	if m.cfg.Port == smtpsPort {
		dialer := &tls.Dialer{Config: tlsConfig}
		conn, err = dialer.DialContext(dialCtx, "tcp", addr)
	} else {
		var dialer net.Dialer
		conn, err = dialer.DialContext(dialCtx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	conn.SetDeadline(time.Now().Add(smtpTimeout))

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start SMTP session: %w", err)
	}

	if m.cfg.Port != smtpsPort {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			client.Close()
			return nil, fmt.Errorf("server %s does not support STARTTLS", addr)
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	return client, nil
}

func (m *Mailer) buildMessage(subject, htmlBody string) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("From", m.cfg.From)
	header.Set("To", m.cfg.To)
	header.Set("Subject", mime.QEncoding.Encode("utf-8", subject))
	header.Set("Date", m.now().Format(time.RFC1123Z))
	header.Set("MIME-Version", "1.0")
	header.Set("Content-Type", "multipart/alternative; boundary="+mw.Boundary())

	var out bytes.Buffer
	for _, key := range []string{"From", "To", "Subject", "Date", "MIME-Version", "Content-Type"} {
		fmt.Fprintf(&out, "%s: %s\r\n", key, header.Get(key))
	}
	out.WriteString("\r\n")

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=UTF-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, err
	}

	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	out.Write(buf.Bytes())
	return out.Bytes(), nil
}
