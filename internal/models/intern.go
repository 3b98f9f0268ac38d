package models

import "time"

// InternStatus tracks where an intern sits in their rotation lifecycle.
// Status is always derivable from the rotation timeline plus extension days;
// the stored value is a cache, never an independent source of truth.
type InternStatus string

const (
	InternStatusActive    InternStatus = "ACTIVE"
	InternStatusExtended  InternStatus = "EXTENDED"
	InternStatusCompleted InternStatus = "COMPLETED"
)

// InternBatch labels the two intake cohorts.
type InternBatch string

const (
	BatchMorning InternBatch = "MORNING"
	BatchEvening InternBatch = "EVENING"
)

// Intern represents a trainee assigned to the rotation programme.
type Intern struct {
	ID            string       `db:"id" json:"id"`
	Name          string       `db:"name" json:"name"`
	Batch         InternBatch  `db:"batch" json:"batch"`
	StartDate     Date         `db:"start_date" json:"start_date"`
	Status        InternStatus `db:"status" json:"status"`
	ExtensionDays int          `db:"extension_days" json:"extension_days"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// InternFilter captures filtering criteria for listing interns.
type InternFilter struct {
	Batch     InternBatch
	Status    InternStatus
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
