package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-rotation-api/internal/models"
)

func date(year int, month time.Month, day int) models.Date {
	return models.NewDate(year, month, day)
}

func planUnits() []models.Unit {
	return []models.Unit{
		{ID: "u1", Name: "Haematology", DurationDays: 2},
		{ID: "u2", Name: "Biochemistry", DurationDays: 2},
		{ID: "u3", Name: "Microbiology", DurationDays: 2},
	}
}

func TestBuildRotationPlanContiguous(t *testing.T) {
	plan := BuildRotationPlan(planUnits(), date(2024, time.January, 1), 0, 0)
	require.Len(t, plan, 3)

	assert.Equal(t, "u1", plan[0].Unit.ID)
	assert.Equal(t, date(2024, time.January, 1), plan[0].StartDate)
	assert.Equal(t, date(2024, time.January, 2), plan[0].EndDate)
	assert.Equal(t, "u2", plan[1].Unit.ID)
	assert.Equal(t, date(2024, time.January, 3), plan[1].StartDate)
	assert.Equal(t, date(2024, time.January, 4), plan[1].EndDate)
	assert.Equal(t, "u3", plan[2].Unit.ID)
	assert.Equal(t, date(2024, time.January, 5), plan[2].StartDate)
	assert.Equal(t, date(2024, time.January, 6), plan[2].EndDate)
}

func TestBuildRotationPlanOffsetRotatesStartingUnit(t *testing.T) {
	plan := BuildRotationPlan(planUnits(), date(2024, time.January, 1), 1, 0)
	require.Len(t, plan, 3)
	assert.Equal(t, "u2", plan[0].Unit.ID)
	assert.Equal(t, "u3", plan[1].Unit.ID)
	assert.Equal(t, "u1", plan[2].Unit.ID)

	// Offsets wrap modulo the unit count.
	wrapped := BuildRotationPlan(planUnits(), date(2024, time.January, 1), 4, 0)
	assert.Equal(t, "u2", wrapped[0].Unit.ID)
}

func TestBuildRotationPlanCoversEveryUnitOnce(t *testing.T) {
	for offset := 0; offset < 6; offset++ {
		plan := BuildRotationPlan(planUnits(), date(2024, time.March, 1), offset, 0)
		seen := map[string]int{}
		for _, interval := range plan {
			seen[interval.Unit.ID]++
		}
		for _, unit := range planUnits() {
			assert.Equal(t, 1, seen[unit.ID], "offset %d unit %s", offset, unit.ID)
		}
	}
}

func TestBuildRotationPlanExtensionCyclesCapped(t *testing.T) {
	// Three extension days after a six-day base cycle: one full two-day
	// slot plus one capped single-day slot.
	plan := BuildRotationPlan(planUnits(), date(2024, time.January, 1), 0, 3)
	require.Len(t, plan, 5)

	assert.Equal(t, "u1", plan[3].Unit.ID)
	assert.Equal(t, date(2024, time.January, 7), plan[3].StartDate)
	assert.Equal(t, date(2024, time.January, 8), plan[3].EndDate)

	assert.Equal(t, "u2", plan[4].Unit.ID)
	assert.Equal(t, date(2024, time.January, 9), plan[4].StartDate)
	assert.Equal(t, date(2024, time.January, 9), plan[4].EndDate)
}

func TestBuildRotationPlanEmptyUnits(t *testing.T) {
	assert.Empty(t, BuildRotationPlan(nil, date(2024, time.January, 1), 3, 10))
}

func TestResolveStatusActiveWhileRotationsRemain(t *testing.T) {
	intern := &models.Intern{ID: "i1"}
	rotations := []models.Rotation{
		{UnitID: "u1", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 2)},
		{UnitID: "u2", StartDate: date(2024, time.January, 3), EndDate: date(2024, time.January, 4)},
	}
	status := ResolveStatus(intern, rotations, planUnits(), date(2024, time.January, 3))
	assert.Equal(t, models.InternStatusActive, status)
}

func TestResolveStatusCompletedAfterAllUnits(t *testing.T) {
	intern := &models.Intern{ID: "i1"}
	rotations := []models.Rotation{
		{UnitID: "u1", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 2)},
		{UnitID: "u2", StartDate: date(2024, time.January, 3), EndDate: date(2024, time.January, 4)},
		{UnitID: "u3", StartDate: date(2024, time.January, 5), EndDate: date(2024, time.January, 6)},
	}
	status := ResolveStatus(intern, rotations, planUnits(), date(2024, time.January, 7))
	assert.Equal(t, models.InternStatusCompleted, status)

	intern.ExtensionDays = 5
	status = ResolveStatus(intern, rotations, planUnits(), date(2024, time.January, 7))
	assert.Equal(t, models.InternStatusExtended, status)
}

func TestResolveStatusManualRotationsDoNotComplete(t *testing.T) {
	intern := &models.Intern{ID: "i1"}
	rotations := []models.Rotation{
		{UnitID: "u1", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 2)},
		{UnitID: "u2", StartDate: date(2024, time.January, 3), EndDate: date(2024, time.January, 4)},
		{UnitID: "u3", StartDate: date(2024, time.January, 5), EndDate: date(2024, time.January, 6), IsManual: true},
	}
	status := ResolveStatus(intern, rotations, planUnits(), date(2024, time.January, 7))
	assert.Equal(t, models.InternStatusActive, status)
}

func TestResolveStatusFutureRotationKeepsActive(t *testing.T) {
	intern := &models.Intern{ID: "i1"}
	rotations := []models.Rotation{
		{UnitID: "u1", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 2)},
		{UnitID: "u2", StartDate: date(2024, time.January, 3), EndDate: date(2024, time.January, 4)},
		{UnitID: "u3", StartDate: date(2024, time.January, 5), EndDate: date(2024, time.January, 6)},
		{UnitID: "u1", StartDate: date(2024, time.February, 1), EndDate: date(2024, time.February, 2)},
	}
	status := ResolveStatus(intern, rotations, planUnits(), date(2024, time.January, 10))
	assert.Equal(t, models.InternStatusActive, status)
}

func TestNextUnitAfterWrapsAndSkipsCompleted(t *testing.T) {
	units := planUnits()

	next := nextUnitAfter(units, "u3", map[string]bool{"u3": true})
	require.NotNil(t, next)
	assert.Equal(t, "u1", next.ID)

	next = nextUnitAfter(units, "u1", map[string]bool{"u1": true, "u2": true})
	require.NotNil(t, next)
	assert.Equal(t, "u3", next.ID)

	next = nextUnitAfter(units, "u2", map[string]bool{"u1": true, "u2": true, "u3": true})
	assert.Nil(t, next)
}
