package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	pkglogger "github.com/onevector/talenthub/pkg/logger"
	"gopkg.in/gomail.v2"
)

// Mailer delivers a single HTML message
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// SESMailer sends emails using AWS SES
type SESMailer struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewSESMailer creates a new AWS SES mailer
func NewSESMailer(ctx context.Context, region, fromAddress string, logger *slog.Logger) (*SESMailer, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESMailer{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

func (m *SESMailer) Send(ctx context.Context, to, subject, html string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(m.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(html)},
			},
		},
	}

	result, err := m.sesClient.SendEmail(ctx, input)
	if err != nil {
		m.logger.Error("failed to send email via SES", pkglogger.EmailAttr(to), slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("email sent", pkglogger.EmailAttr(to), slog.String("message_id", aws.ToString(result.MessageId)))
	return nil
}

// SMTPMailer sends emails through an authenticated SMTP relay
type SMTPMailer struct {
	dialer      *gomail.Dialer
	fromAddress string
	logger      *slog.Logger
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(host string, port int, user, password, fromAddress string, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer:      gomail.NewDialer(host, port, user, password),
		fromAddress: fromAddress,
		logger:      logger,
	}
}

// Send dials the relay per message; ctx is only checked before dialing since gomail is not context-aware
func (m *SMTPMailer) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.fromAddress)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("failed to send email via SMTP", pkglogger.EmailAttr(to), slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("email sent", pkglogger.EmailAttr(to))
	return nil
}

const emailLayout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .button { display: inline-block; background-color: #0066cc; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
        <p><a href="%s" class="button">%s</a></p>
        <p>Or copy and paste this link in your browser:<br><code>%s</code></p>
        <p>%s</p>
        <div class="footer">
            <p>This is an automated message. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>
`

// passwordResetEmail renders the reset message for link
func passwordResetEmail(link string, ttl time.Duration) (subject, html string) {
	subject = "Password Reset Request"
	html = fmt.Sprintf(emailLayout,
		"Reset your password",
		"We received a request to reset your password. Click the button below to choose a new one.",
		link, "Reset Password", link,
		fmt.Sprintf("This link expires in %s. If you did not request a reset, you can ignore this email.", humanizeDuration(ttl)),
	)
	return subject, html
}

// onboardingEmail renders the magic-link invitation for link
func onboardingEmail(link string, ttl time.Duration, maxAttempts int) (subject, html string) {
	subject = "Complete your TalentHub profile"
	html = fmt.Sprintf(emailLayout,
		"Welcome to TalentHub",
		"You have been invited to create your candidate profile. Click the button below to get started.",
		link, "Start Onboarding", link,
		fmt.Sprintf("This link expires in %s and can be opened at most %d times.", humanizeDuration(ttl), maxAttempts),
	)
	return subject, html
}

// humanizeDuration renders whole hours or minutes, e.g. "1 hour", "24 hours", "30 minutes"
func humanizeDuration(d time.Duration) string {
	unit, n := "minute", int(d/time.Minute)
	if d >= time.Hour && d%time.Hour == 0 {
		unit, n = "hour", int(d/time.Hour)
	}
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
