package models

import "time"

// Rotation assigns one intern to one unit for a contiguous calendar-date
// interval. EndDate is inclusive and never earlier than StartDate. Automatic
// rotations for a single intern never overlap; manual rotations are operator
// authored and are never resized or deleted by the engine.
type Rotation struct {
	ID        string    `db:"id" json:"id"`
	InternID  string    `db:"intern_id" json:"intern_id"`
	UnitID    string    `db:"unit_id" json:"unit_id"`
	StartDate Date      `db:"start_date" json:"start_date"`
	EndDate   Date      `db:"end_date" json:"end_date"`
	IsManual  bool      `db:"is_manual" json:"is_manual"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Covers reports whether the rotation interval contains the given date.
func (r Rotation) Covers(day Date) bool {
	return !day.Before(r.StartDate) && !day.After(r.EndDate)
}

// EndedBefore reports whether the rotation finished strictly before the day.
func (r Rotation) EndedBefore(day Date) bool {
	return r.EndDate.Before(day)
}

// StartsAfter reports whether the rotation begins strictly after the day.
func (r Rotation) StartsAfter(day Date) bool {
	return r.StartDate.After(day)
}

// DurationDays returns the inclusive length of the rotation in days.
func (r Rotation) DurationDays() int {
	return r.StartDate.DaysUntil(r.EndDate) + 1
}

// BatchResult reports the outcome of a batch engine run. One intern's
// failure never aborts processing of the rest, so failures are collected
// rather than raised.
type BatchResult struct {
	Succeeded int           `json:"succeeded"`
	Created   int           `json:"created"`
	Failed    []BatchFailed `json:"failed,omitempty"`
}

// BatchFailed names a single intern whose advancement failed.
type BatchFailed struct {
	InternID string `json:"intern_id"`
	Reason   string `json:"reason"`
}
