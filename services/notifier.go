package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/NomadCrew/feedback-backend/config"
	"github.com/NomadCrew/feedback-backend/logger"
	"github.com/NomadCrew/feedback-backend/types"
	"github.com/resend/resend-go/v2"
)

// Notifier is told about every stored feedback entry.
type Notifier interface {
	FeedbackReceived(ctx context.Context, fb types.Feedback) error
}

// NoopNotifier discards notifications.
type NoopNotifier struct{}

func (NoopNotifier) FeedbackReceived(context.Context, types.Feedback) error { return nil }

// emailSender is the part of resend.EmailsSvc the notifier uses.
type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier mails new feedback to a fixed team address through Resend.
type ResendNotifier struct {
	emails emailSender
	from   string
	to     string
	tmpl   *template.Template
}

// NewResendNotifier builds a notifier from the email config.
func NewResendNotifier(cfg *config.EmailConfig) *ResendNotifier {
	client := resend.NewClient(cfg.ResendAPIKey)
	return newResendNotifier(client.Emails, cfg)
}

func newResendNotifier(emails emailSender, cfg *config.EmailConfig) *ResendNotifier {
	return &ResendNotifier{
		emails: emails,
		from:   fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress),
		to:     cfg.NotifyAddress,
		tmpl:   template.Must(template.New("feedback").Parse(feedbackEmailTemplate)),
	}
}

// FeedbackReceived sends one notification mail for fb.
func (n *ResendNotifier) FeedbackReceived(ctx context.Context, fb types.Feedback) error {
	var html bytes.Buffer
	if err := n.tmpl.Execute(&html, fb); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: fmt.Sprintf("New feedback from %s", fb.FullName),
		Html:    html.String(),
		ReplyTo: fb.Email,
	}

	if _, err := n.emails.Send(params); err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}

	logger.GetLogger().Infow("Feedback notification sent",
		"feedback_id", fb.ID.String(),
		"submitter", logger.MaskEmail(fb.Email))
	return nil
}

const feedbackEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New feedback</title>
</head>
<body style="font-family: sans-serif; color: #333333;">
    <h2>New feedback received</h2>
    <p><strong>From:</strong> {{.FullName}} &lt;{{.Email}}&gt;</p>
    {{if .Rating}}<p><strong>Rating:</strong> {{.Rating}} / 5</p>{{end}}
    <p><strong>Received:</strong> {{.CreatedAt}}</p>
    <blockquote style="border-left: 3px solid #cccccc; padding-left: 12px;">{{.Message}}</blockquote>
</body>
</html>`
