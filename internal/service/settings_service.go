package service

import (
	"context"
	"errors"
	"log/slog"

	apperrors "zenstream/internal/errors"
	"zenstream/internal/model"
	"zenstream/internal/repository"
)

type SettingsService struct {
	repo   *repository.SettingsRepository
	logger *slog.Logger
}

func NewSettingsService(repo *repository.SettingsRepository, logger *slog.Logger) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{repo: repo, logger: logger}
}

// Get never fails on a damaged record; the defaults stand in for it.
func (s *SettingsService) Get(ctx context.Context) (*model.Settings, *apperrors.APIError) {
	settings, err := s.repo.Load(ctx)
	if err != nil && !errors.Is(err, repository.ErrCorruptRecord) {
		return nil, apperrors.Internal("failed to load settings")
	}
	if err != nil {
		s.logger.Warn("settings record unreadable, using defaults", "error", err)
	}
	return &settings, nil
}

func (s *SettingsService) Update(ctx context.Context, settings model.Settings) (*model.Settings, *apperrors.APIError) {
	if err := settings.Validate(); err != nil {
		return nil, apperrors.FromDomain(err, "invalid settings")
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, apperrors.Internal("failed to save settings")
	}
	s.logger.Info("settings updated",
		"focus_minutes", settings.FocusDuration,
		"break_minutes", settings.BreakDuration,
		"sessions", settings.TotalSessions,
	)
	return &settings, nil
}
