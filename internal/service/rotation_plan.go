package service

import (
	"github.com/noah-isme/intern-rotation-api/internal/models"
)

// PlannedRotation is one contiguous interval of a generated rotation plan.
type PlannedRotation struct {
	Unit      models.Unit
	StartDate models.Date
	EndDate   models.Date
}

// BuildRotationPlan produces the full rotation plan for one intern: every
// unit exactly once, contiguously from the start date, in the unit order
// rotated left by offset mod n. Extension days append further capped cycles
// immediately after the base cycle until the extension days run out. The
// function is total and side-effect free; zero units yields an empty plan.
func BuildRotationPlan(units []models.Unit, start models.Date, offset, extensionDays int) []PlannedRotation {
	if len(units) == 0 {
		return nil
	}

	rotated := rotateUnits(units, offset)
	plan := make([]PlannedRotation, 0, len(rotated))
	cursor := start

	for _, unit := range rotated {
		end := cursor.AddDays(unit.DurationDays - 1)
		plan = append(plan, PlannedRotation{Unit: unit, StartDate: cursor, EndDate: end})
		cursor = end.AddDays(1)
	}

	remaining := extensionDays
	for remaining > 0 {
		for _, unit := range rotated {
			if remaining <= 0 {
				break
			}
			span := unit.DurationDays
			if span > remaining {
				span = remaining
			}
			end := cursor.AddDays(span - 1)
			plan = append(plan, PlannedRotation{Unit: unit, StartDate: cursor, EndDate: end})
			cursor = end.AddDays(1)
			remaining -= span
		}
	}

	return plan
}

// ResolveStatus derives an intern's lifecycle status from the rotation
// timeline: Completed iff every unit has at least one automatic rotation
// that has already ended and nothing is current or future; otherwise
// Extended when extension days remain, else Active. Every status consumer
// goes through this single function.
func ResolveStatus(intern *models.Intern, rotations []models.Rotation, units []models.Unit, today models.Date) models.InternStatus {
	if len(units) > 0 && coversAllUnits(completedAutomaticUnits(rotations, today), units) && !hasCurrentOrFuture(rotations, today) {
		if intern.ExtensionDays > 0 {
			return models.InternStatusExtended
		}
		return models.InternStatusCompleted
	}
	if intern.ExtensionDays > 0 {
		return models.InternStatusExtended
	}
	return models.InternStatusActive
}

// rotateUnits returns the unit list rotated left by offset mod n.
func rotateUnits(units []models.Unit, offset int) []models.Unit {
	n := len(units)
	if n == 0 {
		return nil
	}
	shift := offset % n
	if shift < 0 {
		shift += n
	}
	rotated := make([]models.Unit, 0, n)
	rotated = append(rotated, units[shift:]...)
	rotated = append(rotated, units[:shift]...)
	return rotated
}

// completedAutomaticUnits returns the set of unit ids with at least one
// automatic rotation that ended strictly before today. Current, future and
// manual-only rotations do not count.
func completedAutomaticUnits(rotations []models.Rotation, today models.Date) map[string]bool {
	completed := make(map[string]bool)
	for _, rotation := range rotations {
		if rotation.IsManual {
			continue
		}
		if rotation.EndedBefore(today) {
			completed[rotation.UnitID] = true
		}
	}
	return completed
}

func coversAllUnits(completed map[string]bool, units []models.Unit) bool {
	for _, unit := range units {
		if !completed[unit.ID] {
			return false
		}
	}
	return true
}

// hasCurrentOrFuture reports whether any rotation, manual or automatic, is
// still running today or scheduled ahead.
func hasCurrentOrFuture(rotations []models.Rotation, today models.Date) bool {
	for _, rotation := range rotations {
		if !rotation.EndedBefore(today) {
			return true
		}
	}
	return false
}

// latestRotationByEnd returns the rotation with the greatest end date, or nil
// for an empty history.
func latestRotationByEnd(rotations []models.Rotation) *models.Rotation {
	var latest *models.Rotation
	for i := range rotations {
		if latest == nil || rotations[i].EndDate.After(latest.EndDate) {
			latest = &rotations[i]
		}
	}
	return latest
}

// nextUnitAfter walks the unit order forward from the unit following
// lastUnitID (wrapping) and returns the first unit without a completed
// automatic rotation. It returns nil once every unit is completed: the
// engine never cycles a finished intern back to the start.
func nextUnitAfter(units []models.Unit, lastUnitID string, completed map[string]bool) *models.Unit {
	n := len(units)
	if n == 0 {
		return nil
	}
	start := 0
	for i, unit := range units {
		if unit.ID == lastUnitID {
			start = i + 1
			break
		}
	}
	for step := 0; step < n; step++ {
		candidate := units[(start+step)%n]
		if !completed[candidate.ID] {
			return &candidate
		}
	}
	return nil
}
