package settings

import (
	"context"
	"time"

	"go-certify/internal/config"
)

const defaultDelayMs = 1000

type SettingsService interface {
	GetAppConfig(ctx context.Context) (*AppConfig, error)
	UpdateAppConfig(ctx context.Context, cfg AppConfig) error
}

type SettingsServiceImpl struct {
	Repo   SettingsRepository
	Config *config.Config
}

func NewSettingsService(repo SettingsRepository, cfg *config.Config) SettingsService {
	return &SettingsServiceImpl{
		Repo:   repo,
		Config: cfg,
	}
}

// GetAppConfig returns the stored app settings, falling back to the
// environment-derived defaults when nothing has been saved yet.
func (s *SettingsServiceImpl) GetAppConfig(ctx context.Context) (*AppConfig, error) {
	stored, err := s.Repo.GetByType(ctx, SettingsTypeApp)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.App == nil {
		return &AppConfig{
			OutputPath:     s.Config.OutputPath,
			DefaultDelayMs: defaultDelayMs,
		}, nil
	}

	cfg := *stored.App
	if cfg.OutputPath == "" {
		cfg.OutputPath = s.Config.OutputPath
	}
	if cfg.DefaultDelayMs <= 0 {
		cfg.DefaultDelayMs = defaultDelayMs
	}
	return &cfg, nil
}

func (s *SettingsServiceImpl) UpdateAppConfig(ctx context.Context, cfg AppConfig) error {
	now := time.Now()
	return s.Repo.Upsert(ctx, &Settings{
		Type:      SettingsTypeApp,
		App:       &cfg,
		CreatedAt: now,
		UpdatedAt: now,
	})
}
