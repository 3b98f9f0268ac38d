package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-rotation-api/internal/dto"
	"github.com/noah-isme/intern-rotation-api/internal/models"
	"github.com/noah-isme/intern-rotation-api/pkg/config"
	appErrors "github.com/noah-isme/intern-rotation-api/pkg/errors"
)

type internStore interface {
	FindByID(ctx context.Context, id string) (*models.Intern, error)
	ListByStatuses(ctx context.Context, statuses ...models.InternStatus) ([]models.Intern, error)
	UpdateStatusExtension(ctx context.Context, id string, status models.InternStatus, extensionDays int) error
}

type unitLister interface {
	ListOrdered(ctx context.Context) ([]models.Unit, error)
	FindByID(ctx context.Context, id string) (*models.Unit, error)
}

type rotationStore interface {
	ListByIntern(ctx context.Context, internID string) ([]models.Rotation, error)
	FindByID(ctx context.Context, id string) (*models.Rotation, error)
	FindOverlapping(ctx context.Context, internID string, start, end models.Date) ([]models.Rotation, error)
	Create(ctx context.Context, rotation *models.Rotation) error
	UpdateUnit(ctx context.Context, id, unitID string) error
	Delete(ctx context.Context, id string) error
}

type offsetCounter interface {
	NextRotationOffset(ctx context.Context) (int, error)
}

type scheduleCache interface {
	GetSchedule(ctx context.Context, internID string, dest interface{}) error
	SetSchedule(ctx context.Context, internID string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, internID string)
}

// RotationService owns the rotation scheduling engine: seeding and advancing
// per-intern schedules, manual rotation writes, unit reassignment and status
// derivation. Mutations for a single intern are serialised through a keyed
// mutex; the round-robin offset increment is atomic at the store.
type RotationService struct {
	interns   internStore
	units     unitLister
	rotations rotationStore
	offsets   offsetCounter
	cache     scheduleCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.RotationConfig

	locks *InternLocks
	today func() models.Date
}

// NewRotationService wires the rotation engine dependencies.
func NewRotationService(
	interns internStore,
	units unitLister,
	rotations rotationStore,
	offsets offsetCounter,
	cache scheduleCache,
	metrics *MetricsService,
	locks *InternLocks,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.RotationConfig,
) *RotationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = NewInternLocks()
	}
	if cfg.ScheduleCacheTTL <= 0 {
		cfg.ScheduleCacheTTL = 2 * time.Minute
	}
	return &RotationService{
		interns:   interns,
		units:     units,
		rotations: rotations,
		offsets:   offsets,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		locks:     locks,
		today:     models.Today,
	}
}

// SeedOrAdvance inspects an intern's schedule and appends the next automatic
// rotation when one is due. It is idempotent: with no elapsed time and no
// intervening changes a second call performs zero mutations. The returned
// bool reports whether a rotation was created.
func (s *RotationService) SeedOrAdvance(ctx context.Context, internID string) (bool, error) {
	unlock := s.locks.Lock(internID)
	defer unlock()
	return s.advanceLocked(ctx, internID)
}

func (s *RotationService) advanceLocked(ctx context.Context, internID string) (bool, error) {
	intern, err := s.loadIntern(ctx, internID)
	if err != nil {
		return false, err
	}
	if intern.StartDate.IsZero() {
		s.logger.Warn("intern has no start date, skipping advance", zap.String("intern_id", internID))
		return false, nil
	}

	units, err := s.units.ListOrdered(ctx)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load units")
	}
	if len(units) == 0 {
		return false, nil
	}

	rotations, err := s.rotations.ListByIntern(ctx, internID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rotations")
	}

	today := s.today()

	if intern.Status == models.InternStatusCompleted {
		// A manual rotation added after completion reopens the schedule.
		if !hasCurrentOrFuture(rotations, today) {
			return false, nil
		}
		if err := s.storeStatus(ctx, intern, activeOrExtended(intern)); err != nil {
			return false, err
		}
	}

	if len(rotations) == 0 {
		return s.seedFirst(ctx, intern, units, today)
	}

	// An upcoming entry already queued means there is nothing to do. This
	// check is what makes repeated calls idempotent.
	for _, rotation := range rotations {
		if rotation.StartDate.After(today) {
			return false, nil
		}
	}

	latest := latestRotationByEnd(rotations)
	nextStart := latest.EndDate.AddDays(1)
	if !nextStart.After(today) {
		// An automatic rotation must be observably upcoming, never
		// silently in the past.
		nextStart = today.AddDays(1)
	}

	completed := completedAutomaticUnits(rotations, today)
	if coversAllUnits(completed, units) && !hasCurrentOrFuture(rotations, today) {
		if err := s.storeStatus(ctx, intern, completedOrExtended(intern)); err != nil {
			return false, err
		}
		return false, nil
	}

	unit := nextUnitAfter(units, latest.UnitID, completed)
	if unit == nil {
		return false, nil
	}

	if unitStillScheduled(rotations, unit.ID, today) {
		// The forward schedule visits each unit at most once.
		s.logger.Warn("skipping duplicate rotation insert",
			zap.String("intern_id", internID),
			zap.String("unit_id", unit.ID),
			zap.String("start", nextStart.String()))
		return false, nil
	}

	rotation := &models.Rotation{
		InternID:  internID,
		UnitID:    unit.ID,
		StartDate: nextStart,
		EndDate:   nextStart.AddDays(unit.DurationDays - 1),
	}
	if err := s.rotations.Create(ctx, rotation); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create rotation")
	}
	s.observeRotationCreated()
	s.invalidate(ctx, internID)
	return true, nil
}

// seedFirst creates the very first automatic rotation for an intern with no
// history. The start is clamped to tomorrow so the seeded rotation is always
// visibly upcoming.
func (s *RotationService) seedFirst(ctx context.Context, intern *models.Intern, units []models.Unit, today models.Date) (bool, error) {
	start := intern.StartDate
	if !start.After(today) {
		start = today.AddDays(1)
	}

	offset, err := s.offsets.NextRotationOffset(ctx)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read rotation offset")
	}
	unit := units[offset%len(units)]

	rotation := &models.Rotation{
		InternID:  intern.ID,
		UnitID:    unit.ID,
		StartDate: start,
		EndDate:   start.AddDays(unit.DurationDays - 1),
	}
	if err := s.rotations.Create(ctx, rotation); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed rotation")
	}
	s.observeRotationCreated()
	s.invalidate(ctx, intern.ID)
	return true, nil
}

// AdvanceAll runs the engine over every active or extended intern. One
// intern's failure never aborts the rest; failures are collected in the
// result instead.
func (s *RotationService) AdvanceAll(ctx context.Context) models.BatchResult {
	result := models.BatchResult{}

	interns, err := s.interns.ListByStatuses(ctx, models.InternStatusActive, models.InternStatusExtended)
	if err != nil {
		s.logger.Error("failed to list interns for batch advance", zap.Error(err))
		result.Failed = append(result.Failed, models.BatchFailed{Reason: err.Error()})
		return result
	}

	for _, intern := range interns {
		created, err := s.SeedOrAdvance(ctx, intern.ID)
		if err != nil {
			s.logger.Warn("batch advance failed for intern",
				zap.String("intern_id", intern.ID), zap.Error(err))
			result.Failed = append(result.Failed, models.BatchFailed{InternID: intern.ID, Reason: err.Error()})
			continue
		}
		result.Succeeded++
		if created {
			result.Created++
		}
	}

	s.observeAdvanceRun(result)
	return result
}

// GenerateForIntern seeds a full rotation plan at intern-creation time: one
// pass through every unit plus extension cycles, starting from the provided
// date, with the starting unit drawn from the round-robin offset. An intern
// that already has rotations is not reseeded.
func (s *RotationService) GenerateForIntern(ctx context.Context, internID string, start models.Date) ([]models.Rotation, error) {
	unlock := s.locks.Lock(internID)
	defer unlock()

	intern, err := s.loadIntern(ctx, internID)
	if err != nil {
		return nil, err
	}

	existing, err := s.rotations.ListByIntern(ctx, internID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rotations")
	}
	if len(existing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "intern already has rotations")
	}

	units, err := s.units.ListOrdered(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load units")
	}
	if len(units) == 0 {
		// Nothing to schedule yet; callers treat this as a no-op.
		return nil, nil
	}

	offset, err := s.offsets.NextRotationOffset(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read rotation offset")
	}

	plan := BuildRotationPlan(units, start, offset, intern.ExtensionDays)
	created := make([]models.Rotation, 0, len(plan))
	for _, interval := range plan {
		rotation := &models.Rotation{
			InternID:  internID,
			UnitID:    interval.Unit.ID,
			StartDate: interval.StartDate,
			EndDate:   interval.EndDate,
		}
		if err := s.rotations.Create(ctx, rotation); err != nil {
			return created, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
				fmt.Sprintf("failed to persist rotation for unit %s", interval.Unit.Name))
		}
		s.observeRotationCreated()
		created = append(created, *rotation)
	}
	s.invalidate(ctx, internID)
	return created, nil
}

// GetSchedule returns an intern's full schedule, advancing it lazily first.
// Responses are cached for a short TTL; any engine mutation invalidates.
func (s *RotationService) GetSchedule(ctx context.Context, internID string) (*dto.InternSchedule, error) {
	if s.cache != nil {
		var cached dto.InternSchedule
		if err := s.cache.GetSchedule(ctx, internID, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("schedule cache read failed", zap.String("intern_id", internID), zap.Error(err))
		}
	}

	if _, err := s.SeedOrAdvance(ctx, internID); err != nil {
		return nil, err
	}

	intern, err := s.loadIntern(ctx, internID)
	if err != nil {
		return nil, err
	}
	rotations, err := s.rotations.ListByIntern(ctx, internID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rotations")
	}
	units, err := s.units.ListOrdered(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load units")
	}

	today := s.today()
	unitNames := make(map[string]string, len(units))
	for _, unit := range units {
		unitNames[unit.ID] = unit.Name
	}

	schedule := &dto.InternSchedule{
		InternID:      intern.ID,
		InternName:    intern.Name,
		Status:        ResolveStatus(intern, rotations, units, today),
		ExtensionDays: intern.ExtensionDays,
		Entries:       make([]dto.ScheduleEntry, 0, len(rotations)),
	}
	for _, rotation := range rotations {
		schedule.Entries = append(schedule.Entries, dto.ScheduleEntry{
			ID:        rotation.ID,
			UnitID:    rotation.UnitID,
			UnitName:  unitNames[rotation.UnitID],
			StartDate: rotation.StartDate,
			EndDate:   rotation.EndDate,
			IsManual:  rotation.IsManual,
			Current:   rotation.Covers(today),
		})
	}

	if s.cache != nil {
		if err := s.cache.SetSchedule(ctx, internID, schedule, s.cfg.ScheduleCacheTTL); err != nil {
			s.logger.Warn("schedule cache write failed", zap.String("intern_id", internID), zap.Error(err))
		}
	}
	return schedule, nil
}

// ResolveInternStatus derives the intern's lifecycle status without any side
// effect on the stored rows.
func (s *RotationService) ResolveInternStatus(ctx context.Context, internID string) (models.InternStatus, error) {
	intern, err := s.loadIntern(ctx, internID)
	if err != nil {
		return "", err
	}
	rotations, err := s.rotations.ListByIntern(ctx, internID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rotations")
	}
	units, err := s.units.ListOrdered(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load units")
	}
	return ResolveStatus(intern, rotations, units, s.today()), nil
}

// CreateManual records an operator-authored rotation. Manual entries are
// authoritative: they must not overlap anything already on the timeline.
func (s *RotationService) CreateManual(ctx context.Context, req dto.CreateRotationRequest) (*models.Rotation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rotation payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}

	unlock := s.locks.Lock(req.InternID)
	defer unlock()

	if _, err := s.loadIntern(ctx, req.InternID); err != nil {
		return nil, err
	}
	if _, err := s.units.FindByID(ctx, req.UnitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unit not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unit")
	}

	overlapping, err := s.rotations.FindOverlapping(ctx, req.InternID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check overlaps")
	}
	if len(overlapping) > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("rotation overlaps existing entry %s..%s", overlapping[0].StartDate, overlapping[0].EndDate))
	}

	rotation := &models.Rotation{
		InternID:  req.InternID,
		UnitID:    req.UnitID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsManual:  true,
	}
	if err := s.rotations.Create(ctx, rotation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create rotation")
	}
	s.observeRotationCreated()
	s.invalidate(ctx, req.InternID)
	return rotation, nil
}

// Delete removes a rotation on explicit operator request.
func (s *RotationService) Delete(ctx context.Context, rotationID string) error {
	rotation, err := s.loadRotation(ctx, rotationID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(rotation.InternID)
	defer unlock()

	if err := s.rotations.Delete(ctx, rotationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "rotation not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete rotation")
	}
	s.invalidate(ctx, rotation.InternID)
	return nil
}

// ReassignUnit changes the unit of one rotation by swapping with a future
// rotation, so unit coverage and every date on the timeline stay intact.
func (s *RotationService) ReassignUnit(ctx context.Context, rotationID, newUnitID string) error {
	rotation, err := s.loadRotation(ctx, rotationID)
	if err != nil {
		return err
	}
	if _, err := s.units.FindByID(ctx, newUnitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "unit not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unit")
	}
	if rotation.UnitID == newUnitID {
		return nil
	}
	oldUnitID := rotation.UnitID

	unlock := s.locks.Lock(rotation.InternID)
	defer unlock()

	rotations, err := s.rotations.ListByIntern(ctx, rotation.InternID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rotations")
	}

	var future []models.Rotation
	for _, other := range rotations {
		if other.ID != rotation.ID && other.StartDate.After(rotation.StartDate) {
			future = append(future, other)
		}
	}

	swapped := false
	for _, other := range future {
		if other.UnitID == newUnitID {
			// Pure swap: the future holder of the new unit takes over
			// the old one. No dates move anywhere.
			if err := s.rotations.UpdateUnit(ctx, other.ID, oldUnitID); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to swap future rotation")
			}
			swapped = true
			break
		}
	}

	if err := s.rotations.UpdateUnit(ctx, rotation.ID, newUnitID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign rotation")
	}

	if !swapped {
		if len(future) > 0 {
			if err := s.rotations.UpdateUnit(ctx, future[0].ID, oldUnitID); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hand off displaced unit")
			}
		} else {
			// No future slot can absorb the displaced unit; append one so
			// the cycle still visits it.
			displaced, err := s.units.FindByID(ctx, oldUnitID)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load displaced unit")
			}
			start := rotation.EndDate.AddDays(1)
			synthesized := &models.Rotation{
				InternID:  rotation.InternID,
				UnitID:    oldUnitID,
				StartDate: start,
				EndDate:   start.AddDays(displaced.DurationDays - 1),
			}
			if err := s.rotations.Create(ctx, synthesized); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to synthesize rotation")
			}
			s.observeRotationCreated()
		}
	}

	if err := s.dedupeFuture(ctx, rotation.InternID, rotation.StartDate, oldUnitID); err != nil {
		return err
	}

	s.invalidate(ctx, rotation.InternID)
	return nil
}

// dedupeFuture drops duplicate forward entries for a unit beyond the first.
// Reassignment swaps should never create these; the pass is defensive.
func (s *RotationService) dedupeFuture(ctx context.Context, internID string, after models.Date, unitID string) error {
	rotations, err := s.rotations.ListByIntern(ctx, internID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload rotations")
	}
	seen := false
	for _, rotation := range rotations {
		if !rotation.StartDate.After(after) || rotation.UnitID != unitID {
			continue
		}
		if !seen {
			seen = true
			continue
		}
		s.logger.Warn("removing duplicate future rotation",
			zap.String("intern_id", internID),
			zap.String("unit_id", unitID),
			zap.String("rotation_id", rotation.ID))
		if err := s.rotations.Delete(ctx, rotation.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove duplicate rotation")
		}
	}
	return nil
}

// unitStillScheduled reports whether the unit already has a rotation that has
// not ended yet, manual or automatic.
func unitStillScheduled(rotations []models.Rotation, unitID string, today models.Date) bool {
	for _, rotation := range rotations {
		if rotation.UnitID == unitID && !rotation.EndedBefore(today) {
			return true
		}
	}
	return false
}

func (s *RotationService) storeStatus(ctx context.Context, intern *models.Intern, status models.InternStatus) error {
	if intern.Status == status {
		return nil
	}
	if err := s.interns.UpdateStatusExtension(ctx, intern.ID, status, intern.ExtensionDays); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update intern status")
	}
	intern.Status = status
	return nil
}

func (s *RotationService) loadIntern(ctx context.Context, internID string) (*models.Intern, error) {
	intern, err := s.interns.FindByID(ctx, internID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern")
	}
	return intern, nil
}

func (s *RotationService) loadRotation(ctx context.Context, rotationID string) (*models.Rotation, error) {
	rotation, err := s.rotations.FindByID(ctx, rotationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "rotation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rotation")
	}
	return rotation, nil
}

func (s *RotationService) invalidate(ctx context.Context, internID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, internID)
	}
}

func (s *RotationService) observeRotationCreated() {
	if s.metrics != nil {
		s.metrics.ObserveRotationCreated()
	}
}

func (s *RotationService) observeAdvanceRun(result models.BatchResult) {
	if s.metrics != nil {
		s.metrics.ObserveAdvanceRun(result)
	}
}

func activeOrExtended(intern *models.Intern) models.InternStatus {
	if intern.ExtensionDays > 0 {
		return models.InternStatusExtended
	}
	return models.InternStatusActive
}

func completedOrExtended(intern *models.Intern) models.InternStatus {
	if intern.ExtensionDays > 0 {
		return models.InternStatusExtended
	}
	return models.InternStatusCompleted
}

// InternLocks serialises per-intern engine mutations. The rotation and
// extension services share one instance so concurrent advancement and
// extension adjustment for the same intern never interleave.
type InternLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewInternLocks builds an empty lock table.
func NewInternLocks() *InternLocks {
	return &InternLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for a key and returns its unlock function.
func (k *InternLocks) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
