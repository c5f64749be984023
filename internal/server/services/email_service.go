package services

import (
	"fmt"
	"os"

	"github.com/resendlabs/resend-go"
	"github.com/sirupsen/logrus"
)

// Mailer delivers registration emails.
type Mailer interface {
	SendAuthCode(email, code string) error
	SendWelcomeEmail(email string) error
}

type EmailService struct {
	client    *resend.Client
	fromEmail string
	log       logrus.FieldLogger
}

// NewEmailService sends through Resend when RESEND_API_KEY is set and
// SKIP_EMAIL_SEND is not "true". Otherwise codes are only logged.
func NewEmailService(log logrus.FieldLogger) *EmailService {
	fromEmail := os.Getenv("FROM_EMAIL")
	if fromEmail == "" {
		fromEmail = "noreply@cryptocatslab.ru"
	}

	s := &EmailService{fromEmail: fromEmail, log: log.WithField("component", "email")}

	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey != "" && os.Getenv("SKIP_EMAIL_SEND") != "true" {
		s.client = resend.NewClient(apiKey)
	} else {
		s.log.Warn("Email delivery disabled, verification codes will be logged")
	}
	return s
}

func (s *EmailService) SendAuthCode(email, code string) error {
	if s.client == nil {
		s.log.WithFields(logrus.Fields{"email": email, "code": code}).Info("Verification code")
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: "Your Iskra verification code",
		Html: fmt.Sprintf(`
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Iskra verification code</h2>
				<p>Your code is:</p>
				<div style="background-color: #f4f4f4; padding: 20px; text-align: center; font-size: 32px; font-weight: bold; letter-spacing: 8px; margin: 20px 0;">
					%s
				</div>
				<p style="color: #666;">This code will expire in 5 minutes.</p>
				<p style="color: #666;">If you didn't request this code, please ignore this email.</p>
			</div>
		`, code),
	}

	_, err := s.client.Emails.Send(params)
	return err
}

func (s *EmailService) SendWelcomeEmail(email string) error {
	if s.client == nil {
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: "Welcome to Iskra",
		Html: `
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Welcome to Iskra!</h2>
				<p>Your account is ready. The free plan includes 20 requests per day.</p>
				<p style="color: #666;">Upgrade to Pro or Pro Plus at any time from the editor.</p>
			</div>
		`,
	}

	_, err := s.client.Emails.Send(params)
	return err
}
