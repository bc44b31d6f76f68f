package config

import (
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

var ErrEmailDisabled = errors.New("email delivery is not configured")

type EmailService struct {
	client *resend.Client
	from   string
	log    *zap.Logger
}

// NewEmailService returns a disabled service when RESEND_API_KEY is empty.
func NewEmailService(cfg *Config, log *zap.Logger) *EmailService {
	service := &EmailService{from: cfg.FromEmail, log: log}
	if cfg.ResendAPIKey == "" {
		log.Info("email delivery disabled, RESEND_API_KEY not set")
		return service
	}
	service.client = resend.NewClient(cfg.ResendAPIKey)
	log.Info("email service initialized", zap.String("from", cfg.FromEmail))
	return service
}

func (e *EmailService) Enabled() bool {
	return e.client != nil
}

func (e *EmailService) SendEmail(to, subject, body string) error {
	if e.client == nil {
		return ErrEmailDisabled
	}
	sent, err := e.client.Emails.Send(&resend.SendEmailRequest{
		From:    e.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	})
	if err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}
	e.log.Info("email sent", zap.String("to", to), zap.String("id", sent.Id))
	return nil
}
