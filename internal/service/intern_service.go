package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-rotation-api/internal/dto"
	"github.com/noah-isme/intern-rotation-api/internal/models"
	"github.com/noah-isme/intern-rotation-api/pkg/config"
	appErrors "github.com/noah-isme/intern-rotation-api/pkg/errors"
)

type internRepository interface {
	List(ctx context.Context, filter models.InternFilter) ([]models.Intern, int, error)
	FindByID(ctx context.Context, id string) (*models.Intern, error)
	Create(ctx context.Context, intern *models.Intern) error
	Update(ctx context.Context, intern *models.Intern) error
	Delete(ctx context.Context, id string) error
}

type scheduleGenerator interface {
	GenerateForIntern(ctx context.Context, internID string, start models.Date) ([]models.Rotation, error)
}

// InternService handles intern master data. Registration optionally hands
// the new intern straight to the schedule generator.
type InternService struct {
	repo      internRepository
	generator scheduleGenerator
	cache     scheduleCache
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.RotationConfig
}

// NewInternService creates a new intern service.
func NewInternService(repo internRepository, generator scheduleGenerator, cache scheduleCache, validate *validator.Validate, logger *zap.Logger, cfg config.RotationConfig) *InternService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InternService{repo: repo, generator: generator, cache: cache, validator: validate, logger: logger, cfg: cfg}
}

// List returns paginated interns.
func (s *InternService) List(ctx context.Context, filter models.InternFilter) ([]models.Intern, *models.Pagination, error) {
	interns, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list interns")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return interns, pagination, nil
}

// Get returns an intern by identifier.
func (s *InternService) Get(ctx context.Context, id string) (*models.Intern, error) {
	intern, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern")
	}
	return intern, nil
}

// Create registers an intern and, when enabled, generates their full
// rotation schedule. A generation failure does not roll back the intern: the
// record stays and the schedule can be seeded later by the advance engine.
func (s *InternService) Create(ctx context.Context, req dto.CreateInternRequest) (*models.Intern, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid intern payload")
	}

	intern := &models.Intern{
		Name:      strings.TrimSpace(req.Name),
		Batch:     req.Batch,
		StartDate: req.StartDate,
		Status:    models.InternStatusActive,
	}
	if err := s.repo.Create(ctx, intern); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create intern")
	}

	generate := s.cfg.AutoGenerate
	if req.GenerateRotations != nil {
		generate = *req.GenerateRotations
	}
	if generate && s.generator != nil {
		if _, err := s.generator.GenerateForIntern(ctx, intern.ID, intern.StartDate); err != nil {
			s.logger.Warn("failed to generate rotations for new intern",
				zap.String("intern_id", intern.ID),
				zap.Error(err))
		}
	}
	return intern, nil
}

// Update edits intern master data. Changing the start date does not reshape
// an existing schedule; rotations already written keep their dates.
func (s *InternService) Update(ctx context.Context, id string, req dto.UpdateInternRequest) (*models.Intern, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid intern payload")
	}

	intern, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern")
	}

	intern.Name = strings.TrimSpace(req.Name)
	intern.Batch = req.Batch
	intern.StartDate = req.StartDate

	if err := s.repo.Update(ctx, intern); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update intern")
	}
	s.invalidate(ctx, id)
	return intern, nil
}

// Delete removes an intern; rotations and extension history cascade at the
// database.
func (s *InternService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete intern")
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *InternService) invalidate(ctx context.Context, internID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, internID)
	}
}
