package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/formpost/formpost/internal/model"
)

// ErrUnknownService is returned for an EMAIL_SERVICE name with no known host.
var ErrUnknownService = errors.New("unknown email service")

type endpoint struct {
	host string
	port int
}

// Hosts for well-known mail providers, keyed by lower-case service name.
var wellKnownServices = map[string]endpoint{
	"gmail":    {"smtp.gmail.com", 465},
	"outlook":  {"smtp-mail.outlook.com", 587},
	"hotmail":  {"smtp-mail.outlook.com", 587},
	"yahoo":    {"smtp.mail.yahoo.com", 465},
	"sendgrid": {"smtp.sendgrid.net", 587},
	"mailgun":  {"smtp.mailgun.org", 587},
	"zoho":     {"smtp.zoho.com", 465},
	"icloud":   {"smtp.mail.me.com", 587},
}

// SMTPConfig configures an SMTPNotifier.
type SMTPConfig struct {
	Service  string // well-known provider name
	Host     string // overrides Service
	Port     int
	Username string
	Password string
	From     string // defaults to Username
	Timeout  time.Duration
}

// SMTPNotifier sends notifications over SMTP.
type SMTPNotifier struct {
	host     string
	port     int
	auth     smtp.Auth
	from     string
	timeout  time.Duration
	dialer   func(ctx context.Context, network, addr string) (net.Conn, error)
	tlsConf  *tls.Config
	boundary func() string
}

// NewSMTPNotifier resolves the mail host and returns a notifier.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	ep := endpoint{host: cfg.Host, port: cfg.Port}
	if ep.host == "" {
		known, ok := wellKnownServices[strings.ToLower(cfg.Service)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownService, cfg.Service)
		}
		ep.host = known.host
		if ep.port == 0 {
			ep.port = known.port
		}
	}
	if ep.port == 0 {
		ep.port = 587
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, ep.host)
	}

	d := &net.Dialer{Timeout: timeout}
	return &SMTPNotifier{
		host:    ep.host,
		port:    ep.port,
		auth:    auth,
		from:    from,
		timeout: timeout,
		dialer:  d.DialContext,
		tlsConf: &tls.Config{ServerName: ep.host, MinVersion: tls.VersionTLS12},
	}, nil
}

// Addr returns the resolved host:port.
func (n *SMTPNotifier) Addr() string {
	return net.JoinHostPort(n.host, strconv.Itoa(n.port))
}

// Send delivers the notification to the owner's email address.
func (n *SMTPNotifier) Send(ctx context.Context, owner *model.Owner, fields model.Fields) error {
	msg, err := n.buildMessage(owner.Email, fields)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	conn, err := n.dialer(ctx, "tcp", n.Addr())
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	// Port 465 speaks TLS from the first byte; other ports upgrade with STARTTLS.
	if n.port == 465 {
		conn = tls.Client(conn, n.tlsConf)
	}

	c, err := smtp.NewClient(conn, n.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if n.port != 465 {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(n.tlsConf); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if n.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(n.auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := c.Mail(n.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(owner.Email); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}

// buildMessage renders a multipart/alternative message with text and HTML parts.
func (n *SMTPNotifier) buildMessage(to string, fields model.Fields) ([]byte, error) {
	lines := Lines(fields)
	html, err := RenderHTML(lines)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if n.boundary != nil {
		if err := mw.SetBoundary(n.boundary()); err != nil {
			return nil, fmt.Errorf("set boundary: %w", err)
		}
	}

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", RenderText(lines)},
		{"text/html; charset=UTF-8", html},
	}
	for _, p := range parts {
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, fmt.Errorf("create part: %w", err)
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(p.content)); err != nil {
			return nil, fmt.Errorf("write part: %w", err)
		}
		if err := qp.Close(); err != nil {
			return nil, fmt.Errorf("close part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", n.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", Subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
