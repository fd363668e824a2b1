// Package mail implements the MailSender domain service over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"folio/config"
	"folio/internal/domain/service"
)

// smtpSender delivers mail through a single SMTP endpoint with STARTTLS.
type smtpSender struct {
	host     string
	port     int
	username string
	password string
	fromName string
	fromAddr string
	startTLS bool
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSMTPSender is the constructor for smtpSender.
func NewSMTPSender(cfg *config.Config, logger *slog.Logger) (service.MailSender, error) {
	if cfg.SMTP == nil || cfg.SMTP.Host == "" {
		return nil, errors.New("smtp configuration must be provided")
	}

	return &smtpSender{
		host:     cfg.SMTP.Host,
		port:     cfg.SMTP.Port,
		username: cfg.SMTP.Username,
		password: cfg.SMTP.Password,
		fromName: cfg.SMTP.FromName,
		fromAddr: cfg.SMTP.FromAddress,
		startTLS: cfg.SMTP.StartTLS,
		timeout:  cfg.SMTP.Timeout,
		logger:   logger,
	}, nil
}

// Send delivers a plain-text message. The dial is bounded by the
// configured timeout and the caller's context; the SMTP conversation
// inherits the connection deadline so a stalled server cannot hold the
// caller indefinitely.
func (s *smtpSender) Send(ctx context.Context, to, subject, body string) error {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrap(err, "failed to dial smtp server")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()

		return errors.Wrap(err, "failed to open smtp session")
	}
	defer client.Quit()

	if s.startTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return errors.Wrap(err, "failed to start tls")
		}
	}

	if s.username != "" {
		auth := smtp.PlainAuth("", s.username, s.password, s.host)
		if err := client.Auth(auth); err != nil {
			return errors.Wrap(err, "smtp authentication failed")
		}
	}

	if err := client.Mail(s.fromAddr); err != nil {
		return errors.Wrap(err, "failed to set sender")
	}
	if err := client.Rcpt(to); err != nil {
		return errors.Wrap(err, "failed to set recipient")
	}

	writer, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "failed to open message body")
	}
	if _, err := writer.Write(s.buildMessage(to, subject, body)); err != nil {
		return errors.Wrap(err, "failed to write message body")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "failed to finish message body")
	}

	s.logger.Debug("Mail sent", slog.String("to", to), slog.String("subject", subject))

	return nil
}

func (s *smtpSender) buildMessage(to, subject, body string) []byte {
	msg := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.fromAddr) +
		fmt.Sprintf("To: %s\r\n", to) +
		fmt.Sprintf("Subject: %s\r\n", subject) +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
		"\r\n" +
		body

	return []byte(msg)
}
