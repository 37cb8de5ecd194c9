package email

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"
)

type EmailService struct {
	client   *resend.Client
	from     string
	fromName string
	logger   *zap.Logger
}

func NewEmailService(logger *zap.Logger) *EmailService {
	return &EmailService{
		client:   resend.NewClient(os.Getenv("RESEND_API_KEY")),
		from:     os.Getenv("EMAIL_FROM_ADDRESS"),
		fromName: os.Getenv("EMAIL_FROM_NAME"),
		logger:   logger,
	}
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<h1>Welcome to FlashFrame, {{.Name}}!</h1>
<p>Your organization <strong>{{.Organization}}</strong> is ready. Create your
first event and start sharing photos with your guests.</p>
`))

var resetTemplate = template.Must(template.New("reset").Parse(`
<h1>Reset your password</h1>
<p>Click the link below to choose a new password. The link is valid for
one hour.</p>
<p><a href="{{.ResetLink}}">Reset password</a></p>
`))

func (s *EmailService) SendWelcomeEmail(to, name, organization string) error {
	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, map[string]string{
		"Name":         name,
		"Organization": organization,
	}); err != nil {
		return fmt.Errorf("render welcome email: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{to},
		Subject: "Welcome to FlashFrame!",
		Html:    body.String(),
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.logger.Error("failed to send welcome email", zap.String("to", to), zap.Error(err))
		return err
	}
	s.logger.Info("sent welcome email", zap.String("to", to), zap.String("id", resp.Id))
	return nil
}

func (s *EmailService) SendPasswordResetEmail(to, resetToken string) error {
	resetLink := os.Getenv("FRONTEND_URL") + "/reset-password?token=" + resetToken

	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, map[string]string{
		"ResetLink": resetLink,
	}); err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{to},
		Subject: "Reset Your Password - FlashFrame",
		Html:    body.String(),
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.logger.Error("failed to send reset email", zap.String("to", to), zap.Error(err))
		return err
	}
	s.logger.Info("sent reset email", zap.String("to", to), zap.String("id", resp.Id))
	return nil
}
