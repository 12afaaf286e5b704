// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/taibuivan/motofleet/internal/platform/ctxutil"
)

// # Mail Delivery Port

// Mailer delivers password reset links.
type Mailer interface {
	// SendPasswordReset sends link to the address to. The link embeds the
	// plaintext reset token and must not be logged.
	SendPasswordReset(context context.Context, to, link string) error
}

const (
	resetSubject = "Reset your MotoFleet password"
	dialTimeout  = 10 * time.Second
)

// # SMTP

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer sends reset mail through an SMTP relay. STARTTLS is negotiated
// when the server offers it.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates a mailer for cfg.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendPasswordReset implements [Mailer].
func (mailer *SMTPMailer) SendPasswordReset(context context.Context, to, link string) error {
	if err := context.Err(); err != nil {
		return err
	}

	message := mailer.compose(to, link)

	dialer := mail.NewDialer(mailer.cfg.Host, mailer.cfg.Port, mailer.cfg.User, mailer.cfg.Password)
	dialer.Timeout = dialTimeout
	dialer.TLSConfig = &tls.Config{ServerName: mailer.cfg.Host, MinVersion: tls.VersionTLS12}

	if err := dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("auth_mailer_smtp_send_failed: %w", err)
	}
	return nil
}

func (mailer *SMTPMailer) compose(to, link string) *mail.Message {
	message := mail.NewMessage()
	message.SetHeader("From", mailer.cfg.From)
	message.SetHeader("To", to)
	message.SetHeader("Subject", resetSubject)
	message.SetBody("text/plain", resetText(link))
	message.AddAlternative("text/html", resetHTML(link))
	return message
}

func resetText(link string) string {
	return "We received a request to reset your password.\n\n" +
		"Open the link below within one hour to choose a new one:\n" + link + "\n\n" +
		"If you did not ask for this, you can ignore this message.\n"
}

func resetHTML(link string) string {
	return `<p>We received a request to reset your password.</p>` +
		`<p><a href="` + link + `">Choose a new password</a> (valid for one hour).</p>` +
		`<p>If you did not ask for this, you can ignore this message.</p>`
}

// # Log Only

// LogMailer records that a reset mail would have been sent. It is used when no
// SMTP relay is configured.
type LogMailer struct{}

// SendPasswordReset implements [Mailer]. The link is not logged.
func (LogMailer) SendPasswordReset(context context.Context, to, _ string) error {
	ctxutil.GetLogger(context).LogAttrs(context, slog.LevelInfo, "password_reset_mail_skipped",
		slog.String("to", to),
		slog.String("reason", "smtp_not_configured"),
	)
	return nil
}
