package smtp

import (
	"context"
	"errors"

	"go-certify/internal/mailer"
)

type SmtpConfigService interface {
	CreateConfig(ctx context.Context, config *SmtpConfig) error
	GetConfig(ctx context.Context, id string) (*SmtpConfig, error)
	GetDefaultConfig(ctx context.Context) (*SmtpConfig, error)
	ListConfigs(ctx context.Context) ([]SmtpConfig, error)
	UpdateConfig(ctx context.Context, config *SmtpConfig) error
	DeleteConfig(ctx context.Context, id string) error
	SetDefault(ctx context.Context, id string) (*SmtpConfig, error)
	Verify(ctx context.Context, id string) (bool, string)
}

type SmtpConfigServiceImpl struct {
	Repo       SmtpConfigRepository
	Dispatcher mailer.Dispatcher
}

func NewSmtpConfigService(repo SmtpConfigRepository, dispatcher mailer.Dispatcher) SmtpConfigService {
	return &SmtpConfigServiceImpl{
		Repo:       repo,
		Dispatcher: dispatcher,
	}
}

func (s *SmtpConfigServiceImpl) CreateConfig(ctx context.Context, config *SmtpConfig) error {
	if config.Host == "" {
		return errors.New("SMTP host is required")
	}
	if config.Port == 0 {
		return errors.New("SMTP port is required")
	}

	if err := s.Repo.Create(ctx, config); err != nil {
		return err
	}

	if config.IsDefault {
		return s.Repo.UnsetDefaultExcept(ctx, config.ID)
	}
	return nil
}

func (s *SmtpConfigServiceImpl) GetConfig(ctx context.Context, id string) (*SmtpConfig, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *SmtpConfigServiceImpl) GetDefaultConfig(ctx context.Context) (*SmtpConfig, error) {
	return s.Repo.GetDefault(ctx)
}

func (s *SmtpConfigServiceImpl) ListConfigs(ctx context.Context) ([]SmtpConfig, error) {
	return s.Repo.List(ctx)
}

func (s *SmtpConfigServiceImpl) UpdateConfig(ctx context.Context, config *SmtpConfig) error {
	if err := s.Repo.Update(ctx, config); err != nil {
		return err
	}

	if config.IsDefault {
		return s.Repo.UnsetDefaultExcept(ctx, config.ID)
	}
	return nil
}

func (s *SmtpConfigServiceImpl) DeleteConfig(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

// SetDefault marks one config as the default and unsets all others.
func (s *SmtpConfigServiceImpl) SetDefault(ctx context.Context, id string) (*SmtpConfig, error) {
	config, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	config.IsDefault = true
	if err := s.Repo.Update(ctx, config); err != nil {
		return nil, err
	}
	if err := s.Repo.UnsetDefaultExcept(ctx, config.ID); err != nil {
		return nil, err
	}

	return config, nil
}

// Verify runs a connectivity/auth check. Failures come back as a negative
// result with a message; this never raises.
func (s *SmtpConfigServiceImpl) Verify(ctx context.Context, id string) (bool, string) {
	config, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return false, "SMTP configuration not found"
	}

	return s.Dispatcher.Verify(config.MailerSettings())
}
