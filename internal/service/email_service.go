package service

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/kwamebb/devRecruit-sub001/internal/config"
)

// sendClient is the slice of the SendGrid client the service uses,
// extracted so tests can substitute a fake.
type sendClient interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// EmailService sends the deletion lifecycle notifications through SendGrid.
// Without an API key the service is disabled and every send is a silent
// no-op, so development environments work without SendGrid credentials.
type EmailService struct {
	client sendClient
	cfg    *config.EmailSettings
}

// NewEmailService creates a new EmailService. A missing API key or a
// disabled flag yields a service that skips every send.
func NewEmailService(cfg *config.EmailSettings) *EmailService {
	s := &EmailService{cfg: cfg}
	if cfg.Enabled && cfg.SendGridAPIKey != "" {
		s.client = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	} else {
		log.Info().Msg("Email notifications disabled")
	}
	return s
}

// Enabled reports whether the service will actually send anything.
func (s *EmailService) Enabled() bool {
	return s.client != nil
}

// SendDeletionScheduled tells the user their account deletion has been
// scheduled and until when it can be cancelled.
func (s *EmailService) SendDeletionScheduled(email, name string, scheduledFor time.Time) error {
	date := scheduledFor.Format("January 2, 2006")
	subject := "Your DevRecruit account is scheduled for deletion"
	plain := fmt.Sprintf(
		"Your DevRecruit account is scheduled for deletion on %s. "+
			"If you change your mind, sign in and cancel the deletion before that date. "+
			"After it, your account and data will be permanently removed.", date)
	html := fmt.Sprintf(
		"<p>Your DevRecruit account is scheduled for deletion on <strong>%s</strong>.</p>"+
			"<p>If you change your mind, sign in and cancel the deletion before that date. "+
			"After it, your account and data will be permanently removed.</p>", date)

	return s.send(email, name, subject, plain, html)
}

// SendDeletionCancelled confirms that a deletion request was withdrawn and
// the account is active again.
func (s *EmailService) SendDeletionCancelled(email, name string) error {
	subject := "Your DevRecruit account deletion was cancelled"
	plain := "The scheduled deletion of your DevRecruit account has been cancelled. " +
		"Your account is active again and no data has been removed."
	html := "<p>The scheduled deletion of your DevRecruit account has been cancelled.</p>" +
		"<p>Your account is active again and no data has been removed.</p>"

	return s.send(email, name, subject, plain, html)
}

// send builds and submits one message. Disabled services skip quietly.
func (s *EmailService) send(toEmail, toName, subject, plain, html string) error {
	if s.client == nil {
		log.Debug().Str("subject", subject).Msg("Email skipped, notifications disabled")
		return nil
	}

	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromAddress)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	response, err := s.client.Send(message)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Failed to send email")
		return err
	}
	if response.StatusCode >= 400 {
		log.Error().Int("status_code", response.StatusCode).Str("subject", subject).Msg("SendGrid rejected email")
		return fmt.Errorf("sendgrid rejected email with status %d", response.StatusCode)
	}

	log.Info().Int("status_code", response.StatusCode).Str("subject", subject).Msg("Email sent")
	return nil
}
