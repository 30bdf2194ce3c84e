package service

import (
	"fmt"
	"net/smtp"

	"darra/config"

	"github.com/domodwyer/mailyak/v3"
)

// EmailService sends plain-text mail over SMTP. With no host configured it
// is a no-op, so local development works without a mail server.
type EmailService struct {
	cfg *config.SMTPConfig
}

func NewEmailService(cfg *config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) Enabled() bool {
	return s.cfg.Host != ""
}

func (s *EmailService) Send(to, subject, body string) error {
	if !s.Enabled() {
		return nil
	}
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	mail := mailyak.New(fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port), auth)
	mail.From(s.cfg.From)
	mail.To(to)
	mail.Subject(subject)
	mail.Plain().Set(body)
	return mail.Send()
}
