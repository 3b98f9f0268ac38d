package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-rotation-api/internal/dto"
	"github.com/noah-isme/intern-rotation-api/internal/models"
	"github.com/noah-isme/intern-rotation-api/pkg/config"
	appErrors "github.com/noah-isme/intern-rotation-api/pkg/errors"
)

type extensionRotationStore interface {
	ListByIntern(ctx context.Context, internID string) ([]models.Rotation, error)
	UpdateDates(ctx context.Context, id string, start, end models.Date, isManual bool) error
}

type extensionReasonWriter interface {
	Create(ctx context.Context, reason *models.ExtensionReason) error
	ListByIntern(ctx context.Context, internID string) ([]models.ExtensionReason, error)
}

// ExtensionService applies mid-course extensions and reductions: it resizes
// the targeted rotation, shifts everything behind it by the same delta to
// keep the timeline gapless, and appends the audit record. The audit half is
// written even when the schedule half degrades.
type ExtensionService struct {
	interns   internStore
	units     unitLister
	rotations extensionRotationStore
	reasons   extensionReasonWriter
	cache     scheduleCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.RotationConfig

	locks *InternLocks
	today func() models.Date
}

// NewExtensionService wires the extension adjuster.
func NewExtensionService(
	interns internStore,
	units unitLister,
	rotations extensionRotationStore,
	reasons extensionReasonWriter,
	cache scheduleCache,
	metrics *MetricsService,
	locks *InternLocks,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.RotationConfig,
) *ExtensionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = NewInternLocks()
	}
	if cfg.GraceDays <= 0 {
		cfg.GraceDays = 7
	}
	return &ExtensionService{
		interns:   interns,
		units:     units,
		rotations: rotations,
		reasons:   reasons,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		locks:     locks,
		today:     models.Today,
	}
}

// Apply sets an intern's cumulative extension to the requested total and
// resizes the schedule by the resulting delta. A negative delta shrinks.
func (s *ExtensionService) Apply(ctx context.Context, internID string, req dto.ApplyExtensionRequest) (*dto.ApplyExtensionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid extension payload")
	}

	unlock := s.locks.Lock(internID)
	defer unlock()

	intern, err := s.interns.FindByID(ctx, internID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern")
	}

	delta := req.ExtensionDays - intern.ExtensionDays
	result := &dto.ApplyExtensionResult{Delta: delta}

	rotations, err := s.rotations.ListByIntern(ctx, internID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rotations")
	}
	units, err := s.units.ListOrdered(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load units")
	}

	today := s.today()
	intern.ExtensionDays = req.ExtensionDays

	if delta != 0 {
		target := s.findTarget(rotations, req.UnitID, today)
		if target == nil {
			// Reportable inconsistency, not fatal: the stored extension
			// and audit row still land so the trail is never lost.
			s.logger.Warn("no rotation found for extension adjustment",
				zap.String("intern_id", internID),
				zap.String("unit_id", req.UnitID),
				zap.Int("delta", delta))
			s.observeShiftFailure()
			result.Warning = "no matching rotation found; extension recorded without schedule change"
		} else {
			resized, err := s.resizeAndShift(ctx, rotations, target, delta)
			if err != nil {
				return nil, err
			}
			result.ResizedRotation = resized
			rotations, err = s.rotations.ListByIntern(ctx, internID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload rotations")
			}
		}
	}

	status := ResolveStatus(intern, rotations, units, today)
	if err := s.interns.UpdateStatusExtension(ctx, internID, status, req.ExtensionDays); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update intern")
	}
	result.Status = status

	reason := &models.ExtensionReason{
		InternID: internID,
		Days:     delta,
		Reason:   req.Reason,
		Notes:    req.Notes,
	}
	if err := s.reasons.Create(ctx, reason); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record extension reason")
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, internID)
	}
	return result, nil
}

// History returns an intern's extension audit trail, newest first.
func (s *ExtensionService) History(ctx context.Context, internID string) ([]models.ExtensionReason, error) {
	if _, err := s.interns.FindByID(ctx, internID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern")
	}
	reasons, err := s.reasons.ListByIntern(ctx, internID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list extension reasons")
	}
	return reasons, nil
}

// findTarget locates the rotation to resize: the most recent rotation of an
// explicitly requested unit, else the rotation covering today, else the most
// recently ended rotation inside the grace window. Operators often extend a
// unit that technically ended a few days before the paperwork catches up.
func (s *ExtensionService) findTarget(rotations []models.Rotation, unitID string, today models.Date) *models.Rotation {
	if unitID != "" {
		var latest *models.Rotation
		for i := range rotations {
			if rotations[i].UnitID != unitID {
				continue
			}
			if latest == nil || rotations[i].StartDate.After(latest.StartDate) {
				latest = &rotations[i]
			}
		}
		return latest
	}

	for i := range rotations {
		if rotations[i].Covers(today) {
			return &rotations[i]
		}
	}

	graceFloor := today.AddDays(-s.cfg.GraceDays)
	var recent *models.Rotation
	for i := range rotations {
		end := rotations[i].EndDate
		if !end.Before(today) || end.Before(graceFloor) {
			continue
		}
		if recent == nil || end.After(recent.EndDate) {
			recent = &rotations[i]
		}
	}
	return recent
}

// resizeAndShift extends or shrinks the target rotation's end date by delta
// and shifts every rotation that started after the original end by the same
// delta, preserving each one's duration and relative order. A failed shift
// is logged and the rest of the batch continues.
func (s *ExtensionService) resizeAndShift(ctx context.Context, rotations []models.Rotation, target *models.Rotation, delta int) (*models.Rotation, error) {
	newEnd := target.EndDate.AddDays(delta)
	if newEnd.Before(target.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("reduction of %d days would end rotation before it starts", -delta))
	}

	// An extended rotation no longer carries the default automatic
	// duration and must not be silently overwritten later.
	if err := s.rotations.UpdateDates(ctx, target.ID, target.StartDate, newEnd, true); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resize rotation")
	}

	shiftFloor := target.EndDate.AddDays(1)
	for _, rotation := range rotations {
		if rotation.ID == target.ID || rotation.StartDate.Before(shiftFloor) {
			continue
		}
		shiftedStart := rotation.StartDate.AddDays(delta)
		shiftedEnd := rotation.EndDate.AddDays(delta)
		if err := s.rotations.UpdateDates(ctx, rotation.ID, shiftedStart, shiftedEnd, rotation.IsManual); err != nil {
			s.logger.Warn("failed to shift rotation after resize",
				zap.String("rotation_id", rotation.ID),
				zap.Int("delta", delta),
				zap.Error(err))
			s.observeShiftFailure()
		}
	}

	resized := *target
	resized.EndDate = newEnd
	resized.IsManual = true
	return &resized, nil
}

func (s *ExtensionService) observeShiftFailure() {
	if s.metrics != nil {
		s.metrics.ObserveShiftFailure()
	}
}
