package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// defaultSendTimeout bounds a whole SMTP exchange when ctx has no deadline.
const defaultSendTimeout = 30 * time.Second

type PasswordResetMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	resetURL string
	timeout  time.Duration
}

// NewPasswordResetMailer sends reset links through an SMTP relay. resetURL is
// the frontend page that accepts a resetToken query parameter.
func NewPasswordResetMailer(host, port, username, password, from, resetURL string) *PasswordResetMailer {
	return &PasswordResetMailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
		resetURL: strings.TrimSpace(resetURL),
		timeout:  defaultSendTimeout,
	}
}

func (m *PasswordResetMailer) SendPasswordReset(ctx context.Context, email, token, username string) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.host == "" || m.port == "" || m.from == "" {
		return errors.New("mailer missing configuration")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	link, err := ResetLink(m.resetURL, token)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.username != "" || m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return m.send(ctx, auth, email, buildResetMessage(m.from, email, username, link))
}

// send runs one SMTP exchange under a connection deadline taken from ctx, or
// m.timeout when ctx has none. Cancelling ctx closes the connection.
func (m *PasswordResetMailer) send(ctx context.Context, auth smtp.Auth, to string, msg []byte) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(m.timeout)
	}

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(m.host, m.port))
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("smtp deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return client.Quit()
}

// ResetLink appends token to base as the resetToken query parameter.
func ResetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse reset url: %w", err)
	}
	q := u.Query()
	q.Set("resetToken", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func buildResetMessage(from, to, username, link string) []byte {
	greeting := "Hello,"
	if username != "" {
		greeting = fmt.Sprintf("Hello %s,", username)
	}
	body := fmt.Sprintf("%s\r\n\r\nWe received a request to reset your FitCity password. Open the link below within one hour to choose a new one:\r\n\r\n%s\r\n\r\nIf you did not request this, ignore this email.", greeting, link)

	message := strings.Builder{}
	message.WriteString(fmt.Sprintf("From: %s\r\n", from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", to))
	message.WriteString("Subject: Reset your FitCity password\r\n")
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	message.WriteString(body)
	message.WriteString("\r\n")
	return []byte(message.String())
}

// LogMailer stands in when no SMTP relay is configured. It records that a
// reset was issued without writing the token anywhere.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token, username string) error {
	m.logger.Warn("smtp not configured, password reset email not sent",
		zap.String("username", username),
		zap.Int("token_length", len(token)),
	)
	return nil
}
