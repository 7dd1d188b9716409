package email

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/resend/resend-go/v3"

	"lunch-order/internal/config"
	"lunch-order/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrDisabled is returned when no Resend API key is configured. Nothing was
// sent.
var ErrDisabled = errors.New("email delivery disabled")

type Service interface {
	SendNotificationEmail(ctx context.Context, toEmail, recipientName string, category domain.Category, message string) error
	SendInviteEmail(ctx context.Context, toEmail, inviterName, inviteToken string) error
}

type service struct {
	client *resend.Client
	config *config.Config
	logger *slog.Logger
}

// NewService returns a Resend-backed sender. Without an API key every send
// returns ErrDisabled.
func NewService(cfg *config.Config, logger *slog.Logger) Service {
	var client *resend.Client
	if cfg.ResendAPIKey != "" {
		client = resend.NewClient(cfg.ResendAPIKey)
	}
	return &service{
		client: client,
		config: cfg,
		logger: logger.With("component", "email"),
	}
}

func render(templateName string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		return "", fmt.Errorf("failed to parse email templates: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", data); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

func (s *service) sendEmail(ctx context.Context, toEmail, subject, templateName string, data interface{}) error {
	html, err := render(templateName, data)
	if err != nil {
		return err
	}

	if s.client == nil {
		s.logger.Debug("email delivery disabled, skipping send", "to", toEmail, "subject", subject)
		return ErrDisabled
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Lunch Orders <%s>", s.config.FromEmail),
		To:      []string{toEmail},
		Html:    html,
		Subject: subject,
	}

	_, err = s.client.Emails.SendWithContext(ctx, params)
	return err
}

func (s *service) SendNotificationEmail(ctx context.Context, toEmail, recipientName string, category domain.Category, message string) error {
	data := struct {
		Title   string
		Name    string
		Message string
		Link    string
	}{
		Title:   subjectFor(category),
		Name:    recipientName,
		Message: message,
		Link:    fmt.Sprintf("https://%s/notifications", s.config.Domain),
	}
	return s.sendEmail(ctx, toEmail, subjectFor(category), "notification.html", data)
}

func (s *service) SendInviteEmail(ctx context.Context, toEmail, inviterName, inviteToken string) error {
	data := struct {
		Title       string
		InviterName string
		Link        string
	}{
		Title:       "You're invited to Lunch Orders",
		InviterName: inviterName,
		Link:        fmt.Sprintf("https://%s/invite?token=%s", s.config.Domain, inviteToken),
	}
	return s.sendEmail(ctx, toEmail, "You're invited to Lunch Orders", "invite.html", data)
}

func subjectFor(category domain.Category) string {
	switch category {
	case domain.CategoryReminder:
		return "Reminder: order your lunch"
	case domain.CategoryConfirmed:
		return "Your lunch order is confirmed"
	case domain.CategoryModified:
		return "Your lunch order was changed"
	case domain.CategoryMenuUpdated:
		return "Menu update"
	default:
		return "Lunch notification"
	}
}
