package template

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go-certify/internal/config"
	"go-certify/internal/pdf"

	"github.com/google/uuid"
)

type TemplateService interface {
	UploadTemplate(ctx context.Context, name, fileName string, data []byte) (*CertificateTemplate, error)
	GetTemplate(ctx context.Context, id string) (*CertificateTemplate, error)
	ListTemplates(ctx context.Context) ([]CertificateTemplate, error)
	UpdateTemplate(ctx context.Context, id, name string, fields []pdf.FieldPlacement) (*CertificateTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
	TemplateBytes(ctx context.Context, id string) ([]byte, error)
	Preview(ctx context.Context, id string, sampleData map[string]interface{}) ([]byte, error)
}

type TemplateServiceImpl struct {
	Repo     TemplateRepository
	Renderer pdf.Renderer
	Config   *config.Config
}

func NewTemplateService(repo TemplateRepository, renderer pdf.Renderer, cfg *config.Config) TemplateService {
	return &TemplateServiceImpl{
		Repo:     repo,
		Renderer: renderer,
		Config:   cfg,
	}
}

func (s *TemplateServiceImpl) UploadTemplate(ctx context.Context, name, fileName string, data []byte) (*CertificateTemplate, error) {
	if name == "" {
		return nil, errors.New("template name is required")
	}
	if len(data) == 0 {
		return nil, errors.New("template file is required")
	}
	if !strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		return nil, errors.New("template must be a PDF file")
	}

	if err := os.MkdirAll(s.Config.UploadPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	diskName := uuid.NewString() + ".pdf"
	path := filepath.Join(s.Config.UploadPath, diskName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to store template file: %w", err)
	}

	// Probe falls back to A4 internally; only layout display depends on it
	width, height := s.Renderer.PageSize(data)

	template := &CertificateTemplate{
		Name:       name,
		FileName:   fileName,
		FilePath:   path,
		Size:       int64(len(data)),
		PageWidth:  width,
		PageHeight: height,
		Fields:     []pdf.FieldPlacement{},
	}

	if err := s.Repo.Create(ctx, template); err != nil {
		os.Remove(path)
		return nil, err
	}

	return template, nil
}

func (s *TemplateServiceImpl) GetTemplate(ctx context.Context, id string) (*CertificateTemplate, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *TemplateServiceImpl) ListTemplates(ctx context.Context) ([]CertificateTemplate, error) {
	return s.Repo.List(ctx)
}

func (s *TemplateServiceImpl) UpdateTemplate(ctx context.Context, id, name string, fields []pdf.FieldPlacement) (*CertificateTemplate, error) {
	template, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		template.Name = name
	}
	if fields != nil {
		template.Fields = fields
	}

	if err := s.Repo.Update(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *TemplateServiceImpl) DeleteTemplate(ctx context.Context, id string) error {
	template, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := os.Remove(template.FilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete template file: %w", err)
	}

	return s.Repo.Delete(ctx, id)
}

func (s *TemplateServiceImpl) TemplateBytes(ctx context.Context, id string) ([]byte, error) {
	template, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(template.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}
	return data, nil
}

// Preview renders the template with sample data merged over per-field
// defaults, so a preview always succeeds even with no sample values.
func (s *TemplateServiceImpl) Preview(ctx context.Context, id string, sampleData map[string]interface{}) ([]byte, error) {
	template, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(template.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	record := PreviewRecord(template.Fields, sampleData)
	return s.Renderer.Render(data, template.Fields, record)
}

// PreviewRecord builds the value record for a preview: every configured
// field gets a default sample value, overridden by provided sample data.
func PreviewRecord(fields []pdf.FieldPlacement, sampleData map[string]interface{}) map[string]interface{} {
	record := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		record[strings.ToLower(f.Field)] = "Sample " + f.Field
	}
	for k, v := range sampleData {
		record[strings.ToLower(k)] = v
	}
	return record
}
