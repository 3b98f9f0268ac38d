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
	appErrors "github.com/noah-isme/intern-rotation-api/pkg/errors"
)

type unitRepository interface {
	ListOrdered(ctx context.Context) ([]models.Unit, error)
	FindByID(ctx context.Context, id string) (*models.Unit, error)
	FindByName(ctx context.Context, name string) (*models.Unit, error)
	Create(ctx context.Context, unit *models.Unit) error
	Update(ctx context.Context, unit *models.Unit) error
	Delete(ctx context.Context, id string) error
	Coverage(ctx context.Context, today models.Date) ([]models.UnitCoverage, error)
}

type unitRotationCounter interface {
	CountByUnit(ctx context.Context, unitID string) (int, error)
}

// UnitService manages the ordered unit sequence. The sequence is the
// engine's single source of rotation order, so deletes are refused while any
// rotation still references the unit.
type UnitService struct {
	repo      unitRepository
	rotations unitRotationCounter
	validator *validator.Validate
	logger    *zap.Logger
	today     func() models.Date
}

// NewUnitService creates a new unit service.
func NewUnitService(repo unitRepository, rotations unitRotationCounter, validate *validator.Validate, logger *zap.Logger) *UnitService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitService{repo: repo, rotations: rotations, validator: validate, logger: logger, today: models.Today}
}

// List returns all units in rotation order.
func (s *UnitService) List(ctx context.Context) ([]models.Unit, error) {
	units, err := s.repo.ListOrdered(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list units")
	}
	return units, nil
}

// Get returns a unit by identifier.
func (s *UnitService) Get(ctx context.Context, id string) (*models.Unit, error) {
	unit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unit not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unit")
	}
	return unit, nil
}

// Create adds a new unit ensuring name uniqueness.
func (s *UnitService) Create(ctx context.Context, req dto.CreateUnitRequest) (*models.Unit, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unit payload")
	}

	req.Name = strings.TrimSpace(req.Name)

	existing, err := s.repo.FindByName(ctx, req.Name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check unit name")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "unit name already exists")
	}

	unit := &models.Unit{
		Name:         req.Name,
		DurationDays: req.DurationDays,
		Workload:     req.Workload,
		Position:     req.Position,
	}
	if err := s.repo.Create(ctx, unit); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create unit")
	}
	return unit, nil
}

// Update modifies an existing unit. Existing rotations keep their recorded
// dates; a duration change only affects rotations created afterwards.
func (s *UnitService) Update(ctx context.Context, id string, req dto.UpdateUnitRequest) (*models.Unit, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unit payload")
	}

	unit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unit not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unit")
	}

	req.Name = strings.TrimSpace(req.Name)

	existing, err := s.repo.FindByName(ctx, req.Name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check unit name")
	}
	if existing != nil && existing.ID != id {
		return nil, appErrors.Clone(appErrors.ErrConflict, "unit name already exists")
	}

	unit.Name = req.Name
	unit.DurationDays = req.DurationDays
	unit.Workload = req.Workload
	unit.Position = req.Position

	if err := s.repo.Update(ctx, unit); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update unit")
	}
	return unit, nil
}

// Delete removes a unit that no rotation references.
func (s *UnitService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "unit not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unit")
	}

	if s.rotations != nil {
		count, err := s.rotations.CountByUnit(ctx, id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unit rotations")
		}
		if count > 0 {
			return appErrors.Clone(appErrors.ErrConflict, "unit is referenced by existing rotations")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete unit")
	}
	return nil
}

// Coverage reports current, upcoming and historical intern headcount per unit.
func (s *UnitService) Coverage(ctx context.Context) ([]models.UnitCoverage, error) {
	coverage, err := s.repo.Coverage(ctx, s.today())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute unit coverage")
	}
	return coverage, nil
}
