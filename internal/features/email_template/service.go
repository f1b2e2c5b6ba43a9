package email_template

import (
	"context"
	"errors"

	"go-certify/internal/features/smtp"
	"go-certify/internal/mailer"
	"go-certify/pkg/utils"
)

type EmailTemplateService interface {
	CreateTemplate(ctx context.Context, template *EmailTemplate) error
	GetTemplate(ctx context.Context, id string) (*EmailTemplate, error)
	ListTemplates(ctx context.Context) ([]EmailTemplate, error)
	UpdateTemplate(ctx context.Context, template *EmailTemplate) error
	DeleteTemplate(ctx context.Context, id string) error
	RenderTemplate(ctx context.Context, templateID string, record map[string]interface{}) (string, string, error)
	SendTestEmail(ctx context.Context, templateID string, to string, testData map[string]interface{}) error
}

type EmailTemplateServiceImpl struct {
	Repo        EmailTemplateRepository
	SmtpService smtp.SmtpConfigService
	Dispatcher  mailer.Dispatcher
}

func NewEmailTemplateService(
	repo EmailTemplateRepository,
	smtpService smtp.SmtpConfigService,
	dispatcher mailer.Dispatcher,
) EmailTemplateService {
	return &EmailTemplateServiceImpl{
		Repo:        repo,
		SmtpService: smtpService,
		Dispatcher:  dispatcher,
	}
}

func (s *EmailTemplateServiceImpl) CreateTemplate(ctx context.Context, template *EmailTemplate) error {
	if template.Name == "" {
		return errors.New("template name is required")
	}
	if template.Subject == "" {
		return errors.New("subject is required")
	}

	template.Placeholders = derivePlaceholders(template)
	return s.Repo.Create(ctx, template)
}

func (s *EmailTemplateServiceImpl) GetTemplate(ctx context.Context, id string) (*EmailTemplate, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *EmailTemplateServiceImpl) ListTemplates(ctx context.Context) ([]EmailTemplate, error) {
	return s.Repo.List(ctx)
}

func (s *EmailTemplateServiceImpl) UpdateTemplate(ctx context.Context, template *EmailTemplate) error {
	template.Placeholders = derivePlaceholders(template)
	return s.Repo.Update(ctx, template)
}

func (s *EmailTemplateServiceImpl) DeleteTemplate(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

// RenderTemplate substitutes recipient values into the subject and body.
// Unmatched tokens render as empty strings.
func (s *EmailTemplateServiceImpl) RenderTemplate(ctx context.Context, templateID string, record map[string]interface{}) (string, string, error) {
	template, err := s.Repo.GetByID(ctx, templateID)
	if err != nil {
		return "", "", err
	}

	subject := utils.ReplacePlaceholders(template.Subject, record)
	body := utils.ReplacePlaceholders(template.HtmlContent, record)

	return subject, body, nil
}

func (s *EmailTemplateServiceImpl) SendTestEmail(ctx context.Context, templateID string, to string, testData map[string]interface{}) error {
	subject, body, err := s.RenderTemplate(ctx, templateID, testData)
	if err != nil {
		return err
	}

	cfg, err := s.SmtpService.GetDefaultConfig(ctx)
	if err != nil {
		return err
	}
	if cfg == nil {
		return errors.New("no default SMTP configuration set")
	}

	return s.Dispatcher.Send(cfg.MailerSettings(), to, subject, body)
}

// derivePlaceholders scans subject and body for {{token}} names.
func derivePlaceholders(template *EmailTemplate) []string {
	names := utils.ExtractPlaceholders(template.Subject)
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range utils.ExtractPlaceholders(template.HtmlContent) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	if names == nil {
		names = []string{}
	}
	return names
}
