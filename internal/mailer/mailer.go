// Package mailer delivers one-time passwords by email.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stockify/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

var otpTemplate = template.Must(template.ParseFS(templateFS, "templates/otp.html"))

type Sender interface {
	SendOTP(ctx context.Context, to, name, code string, ttl time.Duration) error
}

type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth: auth,
		from: cfg.From,
		send: smtp.SendMail,
	}
}

func (s *SMTPSender) SendOTP(ctx context.Context, to, name, code string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := renderOTP(name, code, ttl)
	if err != nil {
		return err
	}
	msg := buildMessage(s.from, to, "Your Stockify verification code", body)
	if err := s.send(s.addr, s.auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

func renderOTP(name, code string, ttl time.Duration) (string, error) {
	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, struct {
		Name      string
		Code      string
		ExpiresIn string
	}{
		Name:      name,
		Code:      code,
		ExpiresIn: humanDuration(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("render otp mail: %w", err)
	}
	return buf.String(), nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

func humanDuration(d time.Duration) string {
	if d%time.Hour == 0 && d >= time.Hour {
		return plural(int(d/time.Hour), "hour")
	}
	if d >= time.Minute {
		return plural(int(d.Round(time.Minute)/time.Minute), "minute")
	}
	return plural(int(d/time.Second), "second")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// LogSender stands in when SMTP is not configured. Codes are written to
// the debug log so local environments can still complete activation.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendOTP(ctx context.Context, to, name, code string, ttl time.Duration) error {
	s.log.Warn().Str("to", to).Msg("smtp not configured, otp not mailed")
	s.log.Debug().Str("to", to).Str("code", code).Dur("ttl", ttl).Msg("otp issued")
	return nil
}
