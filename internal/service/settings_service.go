package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/intern-rotation-api/internal/models"
	appErrors "github.com/noah-isme/intern-rotation-api/pkg/errors"
)

type settingRepository interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
	IncrementInt(ctx context.Context, key string) (int, error)
}

// SettingService exposes typed access to engine settings, including the
// round-robin offset counter consumed by first-rotation seeding.
type SettingService struct {
	repo   settingRepository
	logger *zap.Logger
}

// NewSettingService creates a new setting service.
func NewSettingService(repo settingRepository, logger *zap.Logger) *SettingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingService{repo: repo, logger: logger}
}

// NextRotationOffset atomically fetches-and-increments the round-robin
// counter and returns the pre-increment value. Two concurrent seedings never
// observe the same offset.
func (s *SettingService) NextRotationOffset(ctx context.Context) (int, error) {
	offset, err := s.repo.IncrementInt(ctx, models.SettingRoundRobinOffset)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to advance round-robin offset")
	}
	return offset, nil
}

// Get returns a setting by key.
func (s *SettingService) Get(ctx context.Context, key string) (*models.Setting, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "setting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load setting")
	}
	return setting, nil
}

// Set stores a setting value.
func (s *SettingService) Set(ctx context.Context, setting *models.Setting) error {
	if setting.Key == "" {
		return appErrors.Clone(appErrors.ErrValidation, "setting key is required")
	}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store setting")
	}
	return nil
}
