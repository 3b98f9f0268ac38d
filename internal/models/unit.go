package models

import "time"

// UnitWorkload labels the reporting weight of a unit. It never influences
// scheduling decisions.
type UnitWorkload string

const (
	WorkloadLow    UnitWorkload = "LOW"
	WorkloadMedium UnitWorkload = "MEDIUM"
	WorkloadHigh   UnitWorkload = "HIGH"
)

// Unit represents a training station interns rotate through. Units form a
// fixed, administrator-managed ordered sequence.
type Unit struct {
	ID           string       `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	DurationDays int          `db:"duration_days" json:"duration_days"`
	Workload     UnitWorkload `db:"workload" json:"workload"`
	Position     *int         `db:"position" json:"position,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// UnitCoverage summarises intern headcount per unit for reporting.
type UnitCoverage struct {
	UnitID       string       `db:"unit_id" json:"unit_id"`
	UnitName     string       `db:"unit_name" json:"unit_name"`
	Workload     UnitWorkload `db:"workload" json:"workload"`
	ActiveCount  int          `db:"active_count" json:"active_count"`
	FutureCount  int          `db:"future_count" json:"future_count"`
	VisitedCount int          `db:"visited_count" json:"visited_count"`
}
