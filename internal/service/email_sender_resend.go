package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// ResendEmailSender delivers auth emails through the Resend API. In
// development, delivery failures are logged and swallowed so a missing API
// key never blocks the flow; in production they propagate.
type ResendEmailSender struct {
	Client      *resend.Client
	From        string
	AppBaseURL  string
	Development bool
	Logger      *logrus.Logger
}

func NewResendEmailSender(apiKey string, from string, appBaseURL string, development bool, logger *logrus.Logger) *ResendEmailSender {
	return &ResendEmailSender{
		Client:      resend.NewClient(apiKey),
		From:        from,
		AppBaseURL:  strings.TrimRight(appBaseURL, "/"),
		Development: development,
		Logger:      logger,
	}
}

func (s *ResendEmailSender) SendVerificationEmail(ctx context.Context, email string, token string) error {
	link := fmt.Sprintf("%s/auth/new-verification?token=%s", s.AppBaseURL, token)
	html := fmt.Sprintf("<p>Click <a href=\"%s\">here</a> to confirm your email.</p>", link)
	return s.send(ctx, email, "Confirm your email", html)
}

func (s *ResendEmailSender) SendPasswordResetEmail(ctx context.Context, email string, token string) error {
	link := fmt.Sprintf("%s/auth/new-password?token=%s", s.AppBaseURL, token)
	html := fmt.Sprintf("<p>Click <a href=\"%s\">here</a> to reset your password.</p>", link)
	return s.send(ctx, email, "Reset your password", html)
}

func (s *ResendEmailSender) SendTwoFactorCodeEmail(ctx context.Context, email string, code string) error {
	html := fmt.Sprintf("<p>Your two-factor authentication code: <strong>%s</strong></p><p>This code expires in 15 minutes.</p>", code)
	if s.Development && s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"to": email, "code": code}).Info("two-factor code")
	}
	return s.send(ctx, email, "Your Two-Factor Authentication Code", html)
}

func (s *ResendEmailSender) send(ctx context.Context, to string, subject string, html string) error {
	params := &resend.SendEmailRequest{
		From:    s.From,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	_, err := s.Client.Emails.Send(params)
	if err != nil {
		if s.Development {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("to", to).Warn("email delivery failed")
			}
			return nil
		}
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
