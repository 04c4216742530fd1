package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SettingsService reads and updates the singleton workflow/escalation
// configuration.
type SettingsService struct {
	config repository.ConfigRepository
}

// NewSettingsService creates the service.
func NewSettingsService(config repository.ConfigRepository) *SettingsService {
	return &SettingsService{config: config}
}

// Get returns the current configuration. A missing row is returned as a
// default-valued config with every feature off.
func (s *SettingsService) Get(ctx context.Context) (*domain.GeneralConfig, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if cfg == nil {
		return defaultConfig(), nil
	}
	return cfg, nil
}

// Update validates and persists the configuration. Non-positive timeouts
// fall back to the priority defaults.
func (s *SettingsService) Update(ctx context.Context, cfg *domain.GeneralConfig) (*domain.GeneralConfig, error) {
	if cfg.EscalationEnabled && !cfg.HasEscalationTarget() {
		return nil, apperrors.NewValidationError(
			"escalation requires a target user or department", nil)
	}
	if cfg.TimeoutCritical <= 0 {
		cfg.TimeoutCritical = domain.DefaultTimeoutCritical
	}
	if cfg.TimeoutHigh <= 0 {
		cfg.TimeoutHigh = domain.DefaultTimeoutHigh
	}
	if cfg.TimeoutMedium <= 0 {
		cfg.TimeoutMedium = domain.DefaultTimeoutMedium
	}
	if cfg.TimeoutLow <= 0 {
		cfg.TimeoutLow = domain.DefaultTimeoutLow
	}

	// The config is a singleton: reuse the existing row's id so updates
	// never insert a second row.
	if existing, err := s.config.Get(ctx); err != nil {
		return nil, apperrors.MapError(err)
	} else if existing != nil {
		cfg.ID = existing.ID
	}

	if err := s.config.Upsert(ctx, cfg); err != nil {
		return nil, apperrors.MapError(err)
	}
	return cfg, nil
}

func defaultConfig() *domain.GeneralConfig {
	return &domain.GeneralConfig{
		TimeoutCritical: domain.DefaultTimeoutCritical,
		TimeoutHigh:     domain.DefaultTimeoutHigh,
		TimeoutMedium:   domain.DefaultTimeoutMedium,
		TimeoutLow:      domain.DefaultTimeoutLow,
	}
}
