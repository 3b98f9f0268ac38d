package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-rotation-api/internal/dto"
	"github.com/noah-isme/intern-rotation-api/internal/models"
	"github.com/noah-isme/intern-rotation-api/pkg/config"
	appErrors "github.com/noah-isme/intern-rotation-api/pkg/errors"
)

func TestSeedFirstUsesInternStartDateWhenFuture(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 5))
	f.addIntern("i1", date(2024, time.January, 10), 0)

	created, err := f.service.SeedOrAdvance(context.Background(), "i1")
	require.NoError(t, err)
	assert.True(t, created)

	rotations := f.rotations.byIntern("i1")
	require.Len(t, rotations, 1)
	assert.Equal(t, "u1", rotations[0].UnitID)
	assert.Equal(t, date(2024, time.January, 10), rotations[0].StartDate)
	assert.Equal(t, date(2024, time.January, 11), rotations[0].EndDate)
	assert.False(t, rotations[0].IsManual)
}

func TestSeedFirstClampsPastStartToTomorrow(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.February, 1))
	f.addIntern("i1", date(2024, time.January, 1), 0)

	created, err := f.service.SeedOrAdvance(context.Background(), "i1")
	require.NoError(t, err)
	assert.True(t, created)

	rotations := f.rotations.byIntern("i1")
	require.Len(t, rotations, 1)
	assert.Equal(t, date(2024, time.February, 2), rotations[0].StartDate)
}

func TestSeedFirstDistributesStartingUnitsRoundRobin(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 1))
	f.addIntern("i1", date(2024, time.January, 2), 0)
	f.addIntern("i2", date(2024, time.January, 2), 0)
	f.addIntern("i3", date(2024, time.January, 2), 0)
	f.addIntern("i4", date(2024, time.January, 2), 0)

	starts := make([]string, 0, 4)
	for _, id := range []string{"i1", "i2", "i3", "i4"} {
		_, err := f.service.SeedOrAdvance(context.Background(), id)
		require.NoError(t, err)
		rotations := f.rotations.byIntern(id)
		require.Len(t, rotations, 1)
		starts = append(starts, rotations[0].UnitID)
	}
	assert.Equal(t, []string{"u1", "u2", "u3", "u1"}, starts)
}

func TestSeedOrAdvanceIsIdempotent(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 1))
	f.addIntern("i1", date(2024, time.January, 2), 0)

	created, err := f.service.SeedOrAdvance(context.Background(), "i1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.service.SeedOrAdvance(context.Background(), "i1")
	require.NoError(t, err)
	assert.False(t, created, "second run with no elapsed time must not mutate")
	assert.Len(t, f.rotations.byIntern("i1"), 1)
}

func TestSeedOrAdvanceAppendsNextUnitAfterElapsed(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 1))
	f.addIntern("i1", date(2024, time.January, 1), 0)
	f.rotations.add(models.Rotation{
		InternID: "i1", UnitID: "u1",
		StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 2),
	})

	f.setToday(date(2024, time.January, 2))
	created, err := f.service.SeedOrAdvance(context.Background(), "i1")
	require.NoError(t, err)
	assert.True(t, created)

	rotations := f.rotations.byIntern("i1")
	require.Len(t, rotations, 2)
	assert.Equal(t, "u2", rotations[1].UnitID)
	assert.Equal(t, date(2024, time.January, 3), rotations[1].StartDate)
	assert.Equal(t, date(2024, time.January, 4), rotations[1].EndDate)
}

func TestSeedOrAdvanceClampsNextStartAfterGap(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 1))
	f.addIntern("i1", date(2024, time.January, 1), 0)
	f.rotations.add(models.Rotation{
		InternID: "i1", UnitID: "u1",
		StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 2),
	})

	// The engine was not run for a while; the next rotation must start
	// tomorrow, not backfill the gap.
	f.setToday(date(2024, time.January, 20))
	created, err := f.service.SeedOrAdvance(context.Background(), "i1")
	require.NoError(t, err)
	assert.True(t, created)

	rotations := f.rotations.byIntern("i1")
	require.Len(t, rotations, 2)
	assert.Equal(t, date(2024, time.January, 21), rotations[1].StartDate)
}

func TestSeedOrAdvanceMarksCompletion(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 7))
	f.addIntern("i1", date(2024, time.January, 1), 0)
	f.rotations.add(models.Rotation{InternID: "i1", UnitID: "u1", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 2)})
	f.rotations.add(models.Rotation{InternID: "i1", UnitID: "u2", StartDate: date(2024, time.January, 3), EndDate: date(2024, time.January, 4)})
	f.rotations.add(models.Rotation{InternID: "i1", UnitID: "u3", StartDate: date(2024, time.January, 5), EndDate: date(2024, time.January, 6)})

	created, err := f.service.SeedOrAdvance(context.Background(), "i1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, models.InternStatusCompleted, f.interns.interns["i1"].Status)
	assert.Len(t, f.rotations.byIntern("i1"), 3, "a finished intern never cycles back to the start")
}

func TestSeedOrAdvanceRevertsCompletionWhenFutureWorkExists(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 7))
	f.addIntern("i1", date(2024, time.January, 1), 0)
	f.interns.interns["i1"].Status = models.InternStatusCompleted
	f.rotations.add(models.Rotation{InternID: "i1", UnitID: "u1", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 2)})
	f.rotations.add(models.Rotation{InternID: "i1", UnitID: "u2", StartDate: date(2024, time.February, 1), EndDate: date(2024, time.February, 2), IsManual: true})

	_, err := f.service.SeedOrAdvance(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, models.InternStatusActive, f.interns.interns["i1"].Status)
}

func TestSeedOrAdvanceSkipsInternWithoutStartDate(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 1))
	f.addIntern("i1", models.Date{}, 0)

	created, err := f.service.SeedOrAdvance(context.Background(), "i1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, f.rotations.byIntern("i1"))
}

func TestSeedOrAdvanceNoUnitsIsNoOp(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 1))
	f.units.units = nil
	f.addIntern("i1", date(2024, time.January, 2), 0)

	created, err := f.service.SeedOrAdvance(context.Background(), "i1")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestAdvanceAllContinuesPastFailures(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 1))
	f.addIntern("i1", date(2024, time.January, 2), 0)
	f.addIntern("i2", date(2024, time.January, 2), 0)
	f.addIntern("i3", date(2024, time.January, 2), 0)
	f.interns.failFind = map[string]error{"i2": fmt.Errorf("connection reset")}

	result := f.service.AdvanceAll(context.Background())
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 2, result.Created)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "i2", result.Failed[0].InternID)
}

func TestGenerateForInternWritesFullPlan(t *testing.T) {
	f := newEngineFixture(t, date(2023, time.December, 1))
	f.addIntern("i1", date(2024, time.January, 1), 0)

	created, err := f.service.GenerateForIntern(context.Background(), "i1", date(2024, time.January, 1))
	require.NoError(t, err)
	require.Len(t, created, 3)

	rotations := f.rotations.byIntern("i1")
	for i := 1; i < len(rotations); i++ {
		assert.Equal(t, rotations[i-1].EndDate.AddDays(1), rotations[i].StartDate, "plan must be gapless")
	}
}

func TestGenerateForInternRejectsExistingHistory(t *testing.T) {
	f := newEngineFixture(t, date(2023, time.December, 1))
	f.addIntern("i1", date(2024, time.January, 1), 0)
	f.rotations.add(models.Rotation{InternID: "i1", UnitID: "u1", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 2)})

	_, err := f.service.GenerateForIntern(context.Background(), "i1", date(2024, time.January, 1))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCreateManualRejectsOverlap(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 1))
	f.addIntern("i1", date(2024, time.January, 1), 0)
	f.rotations.add(models.Rotation{InternID: "i1", UnitID: "u1", StartDate: date(2024, time.January, 10), EndDate: date(2024, time.January, 14)})

	_, err := f.service.CreateManual(context.Background(), dto.CreateRotationRequest{
		InternID:  "i1",
		UnitID:    "u2",
		StartDate: date(2024, time.January, 12),
		EndDate:   date(2024, time.January, 16),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	rotation, err := f.service.CreateManual(context.Background(), dto.CreateRotationRequest{
		InternID:  "i1",
		UnitID:    "u2",
		StartDate: date(2024, time.January, 15),
		EndDate:   date(2024, time.January, 16),
	})
	require.NoError(t, err)
	assert.True(t, rotation.IsManual)
}

func TestReassignUnitSwapsWithFutureHolder(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 1))
	f.addIntern("i1", date(2024, time.January, 1), 0)
	first := f.rotations.add(models.Rotation{InternID: "i1", UnitID: "u1", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 2)})
	second := f.rotations.add(models.Rotation{InternID: "i1", UnitID: "u2", StartDate: date(2024, time.January, 3), EndDate: date(2024, time.January, 4)})
	third := f.rotations.add(models.Rotation{InternID: "i1", UnitID: "u3", StartDate: date(2024, time.January, 5), EndDate: date(2024, time.January, 6)})

	require.NoError(t, f.service.ReassignUnit(context.Background(), first, "u3"))

	rotations := f.rotations.byIntern("i1")
	require.Len(t, rotations, 3)
	byID := map[string]models.Rotation{}
	for _, rotation := range rotations {
		byID[rotation.ID] = rotation
	}
	assert.Equal(t, "u3", byID[first].UnitID)
	assert.Equal(t, "u2", byID[second].UnitID)
	assert.Equal(t, "u1", byID[third].UnitID)

	// Dates never move during a reassignment.
	assert.Equal(t, date(2024, time.January, 1), byID[first].StartDate)
	assert.Equal(t, date(2024, time.January, 5), byID[third].StartDate)

	seen := map[string]int{}
	for _, rotation := range rotations {
		seen[rotation.UnitID]++
	}
	assert.Equal(t, map[string]int{"u1": 1, "u2": 1, "u3": 1}, seen, "coverage must survive the swap")
}

func TestReassignUnitHandsOffToFirstFutureWhenNoHolder(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 1))
	f.units.units = append(f.units.units, models.Unit{ID: "u4", Name: "Histopathology", DurationDays: 2})
	f.addIntern("i1", date(2024, time.January, 1), 0)
	first := f.rotations.add(models.Rotation{InternID: "i1", UnitID: "u1", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 2)})
	second := f.rotations.add(models.Rotation{InternID: "i1", UnitID: "u2", StartDate: date(2024, time.January, 3), EndDate: date(2024, time.January, 4)})

	require.NoError(t, f.service.ReassignUnit(context.Background(), first, "u4"))

	rotations := f.rotations.byIntern("i1")
	byID := map[string]models.Rotation{}
	for _, rotation := range rotations {
		byID[rotation.ID] = rotation
	}
	assert.Equal(t, "u4", byID[first].UnitID)
	assert.Equal(t, "u1", byID[second].UnitID, "displaced unit moves to the first future slot")
}

func TestReassignUnitSynthesizesWhenNoFuture(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 1))
	f.addIntern("i1", date(2024, time.January, 1), 0)
	only := f.rotations.add(models.Rotation{InternID: "i1", UnitID: "u1", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 2)})

	require.NoError(t, f.service.ReassignUnit(context.Background(), only, "u2"))

	rotations := f.rotations.byIntern("i1")
	require.Len(t, rotations, 2)
	assert.Equal(t, "u2", rotations[0].UnitID)
	assert.Equal(t, "u1", rotations[1].UnitID)
	assert.Equal(t, date(2024, time.January, 3), rotations[1].StartDate)
	assert.Equal(t, date(2024, time.January, 4), rotations[1].EndDate)
}

func TestReassignUnitSameUnitIsNoOp(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 1))
	f.addIntern("i1", date(2024, time.January, 1), 0)
	only := f.rotations.add(models.Rotation{InternID: "i1", UnitID: "u1", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 2)})

	require.NoError(t, f.service.ReassignUnit(context.Background(), only, "u1"))
	assert.Len(t, f.rotations.byIntern("i1"), 1)
}

func TestGetScheduleAdvancesLazily(t *testing.T) {
	f := newEngineFixture(t, date(2024, time.January, 1))
	f.addIntern("i1", date(2024, time.January, 2), 0)

	schedule, err := f.service.GetSchedule(context.Background(), "i1")
	require.NoError(t, err)
	require.Len(t, schedule.Entries, 1)
	assert.Equal(t, "u1", schedule.Entries[0].UnitID)
	assert.Equal(t, "Haematology", schedule.Entries[0].UnitName)
	assert.False(t, schedule.Entries[0].Current)

	f.setToday(date(2024, time.January, 2))
	schedule, err = f.service.GetSchedule(context.Background(), "i1")
	require.NoError(t, err)
	assert.True(t, schedule.Entries[0].Current)
}

// --- Fixtures ---

type engineFixture struct {
	interns   *internStoreStub
	units     *unitListerStub
	rotations *rotationStoreStub
	offsets   *offsetCounterStub
	service   *RotationService
	today     models.Date
}

func newEngineFixture(t *testing.T, today models.Date) *engineFixture {
	t.Helper()
	f := &engineFixture{
		interns:   &internStoreStub{interns: map[string]*models.Intern{}},
		units:     &unitListerStub{units: planUnits()},
		rotations: &rotationStoreStub{},
		offsets:   &offsetCounterStub{},
		today:     today,
	}
	f.service = NewRotationService(f.interns, f.units, f.rotations, f.offsets, nil, nil, nil, nil, nil, config.RotationConfig{GraceDays: 7})
	f.service.today = func() models.Date { return f.today }
	return f
}

func (f *engineFixture) setToday(day models.Date) {
	f.today = day
}

func (f *engineFixture) addIntern(id string, start models.Date, extensionDays int) {
	f.interns.interns[id] = &models.Intern{
		ID:            id,
		Name:          "Intern " + id,
		Batch:         models.BatchMorning,
		StartDate:     start,
		Status:        models.InternStatusActive,
		ExtensionDays: extensionDays,
	}
}

type internStoreStub struct {
	interns  map[string]*models.Intern
	failFind map[string]error
}

func (s *internStoreStub) FindByID(_ context.Context, id string) (*models.Intern, error) {
	if err, ok := s.failFind[id]; ok {
		return nil, err
	}
	intern, ok := s.interns[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *intern
	return &clone, nil
}

func (s *internStoreStub) ListByStatuses(_ context.Context, statuses ...models.InternStatus) ([]models.Intern, error) {
	wanted := map[models.InternStatus]bool{}
	for _, status := range statuses {
		wanted[status] = true
	}
	ids := make([]string, 0, len(s.interns))
	for id := range s.interns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []models.Intern
	for _, id := range ids {
		if wanted[s.interns[id].Status] {
			out = append(out, *s.interns[id])
		}
	}
	return out, nil
}

func (s *internStoreStub) UpdateStatusExtension(_ context.Context, id string, status models.InternStatus, extensionDays int) error {
	intern, ok := s.interns[id]
	if !ok {
		return sql.ErrNoRows
	}
	intern.Status = status
	intern.ExtensionDays = extensionDays
	return nil
}

type unitListerStub struct {
	units []models.Unit
}

func (s *unitListerStub) ListOrdered(_ context.Context) ([]models.Unit, error) {
	return append([]models.Unit(nil), s.units...), nil
}

func (s *unitListerStub) FindByID(_ context.Context, id string) (*models.Unit, error) {
	for _, unit := range s.units {
		if unit.ID == id {
			clone := unit
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

type rotationStoreStub struct {
	rows   []models.Rotation
	nextID int
}

func (s *rotationStoreStub) add(rotation models.Rotation) string {
	s.nextID++
	if rotation.ID == "" {
		rotation.ID = fmt.Sprintf("r%d", s.nextID)
	}
	s.rows = append(s.rows, rotation)
	return rotation.ID
}

func (s *rotationStoreStub) byIntern(internID string) []models.Rotation {
	var out []models.Rotation
	for _, rotation := range s.rows {
		if rotation.InternID == internID {
			out = append(out, rotation)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func (s *rotationStoreStub) ListByIntern(_ context.Context, internID string) ([]models.Rotation, error) {
	return s.byIntern(internID), nil
}

func (s *rotationStoreStub) FindByID(_ context.Context, id string) (*models.Rotation, error) {
	for _, rotation := range s.rows {
		if rotation.ID == id {
			clone := rotation
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *rotationStoreStub) FindOverlapping(_ context.Context, internID string, start, end models.Date) ([]models.Rotation, error) {
	var out []models.Rotation
	for _, rotation := range s.rows {
		if rotation.InternID != internID {
			continue
		}
		if !rotation.StartDate.After(end) && !rotation.EndDate.Before(start) {
			out = append(out, rotation)
		}
	}
	return out, nil
}

func (s *rotationStoreStub) Create(_ context.Context, rotation *models.Rotation) error {
	rotation.ID = s.add(*rotation)
	return nil
}

func (s *rotationStoreStub) UpdateUnit(_ context.Context, id, unitID string) error {
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].UnitID = unitID
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *rotationStoreStub) UpdateDates(_ context.Context, id string, start, end models.Date, isManual bool) error {
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].StartDate = start
			s.rows[i].EndDate = end
			s.rows[i].IsManual = isManual
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *rotationStoreStub) Delete(_ context.Context, id string) error {
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *rotationStoreStub) CountByUnit(_ context.Context, unitID string) (int, error) {
	count := 0
	for _, rotation := range s.rows {
		if rotation.UnitID == unitID {
			count++
		}
	}
	return count, nil
}

type offsetCounterStub struct {
	next int
}

func (s *offsetCounterStub) NextRotationOffset(_ context.Context) (int, error) {
	value := s.next
	s.next++
	return value, nil
}
