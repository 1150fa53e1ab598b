package email

import (
	"fmt"
	"net/smtp"

	"github.com/Dan9191/payplan-service/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendWeeklyDigest sends the regenerated plan summary, the action list
// and any risk flags to the plan's owner
func (s *Sender) SendWeeklyDigest(to, username, summary string, actions, riskFlags []string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Your payment plan for the week"

	body := fmt.Sprintf("Dear %s,\n\n", username)
	body += summary + "\n"
	if len(actions) > 0 {
		body += "\nThis week's payments:\n"
		for _, action := range actions {
			body += "  - " + action + "\n"
		}
	}
	if len(riskFlags) > 0 {
		body += "\nWatch out for:\n"
		for _, flag := range riskFlags {
			body += "  - " + flag + "\n"
		}
	}
	body += "\nBest regards,\nPayplan Service"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send digest to %s: %v", to, err)
		return fmt.Errorf("failed to send digest: %w", err)
	}

	s.logger.Infof("Digest sent to %s (%d actions, %d flags)", to, len(actions), len(riskFlags))
	return nil
}
