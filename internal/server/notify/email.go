package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/BijjaSagar/vashihat-nama/internal/logging"
)

// sendMail is a seam for tests.
var sendMail = smtp.SendMail

type EmailConfig struct {
	Host     string
	Port     string
	From     string
	Password string
	DevMode  bool
}

// EmailNotifier delivers plain-text mail over SMTP with PLAIN auth.
type EmailNotifier struct {
	cfg     EmailConfig
	subject string
	log     logging.Logger
}

func NewEmailNotifier(cfg EmailConfig, subject string, log logging.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, subject: subject, log: log.With("module", "email")}
}

func (n *EmailNotifier) Send(ctx context.Context, to, message string) error {
	if n.cfg.DevMode || n.cfg.Host == "" {
		n.log.Info(ctx, "mock sending email", "to", to, "message", message)
		return nil
	}

	if strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("invalid recipient %q", to)
	}

	msg := "From: " + n.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + n.subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
		"\r\n" + message + "\r\n"

	auth := smtp.PlainAuth("", n.cfg.From, n.cfg.Password, n.cfg.Host)
	addr := net.JoinHostPort(n.cfg.Host, n.cfg.Port)

	if err := sendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
