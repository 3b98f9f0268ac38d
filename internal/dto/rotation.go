package dto

import (
	"github.com/noah-isme/intern-rotation-api/internal/models"
)

// CreateRotationRequest creates a manual rotation for an intern.
type CreateRotationRequest struct {
	InternID  string      `json:"intern_id" validate:"required"`
	UnitID    string      `json:"unit_id" validate:"required"`
	StartDate models.Date `json:"start_date" validate:"required"`
	EndDate   models.Date `json:"end_date" validate:"required"`
}

// ReassignUnitRequest swaps the unit of an existing rotation.
type ReassignUnitRequest struct {
	UnitID string `json:"unit_id" validate:"required"`
}

// AdvanceResponse reports whether a new rotation was created.
type AdvanceResponse struct {
	Created bool `json:"created"`
}

// ScheduleEntry is one rotation joined with its unit for display.
type ScheduleEntry struct {
	ID        string      `json:"id"`
	UnitID    string      `json:"unit_id"`
	UnitName  string      `json:"unit_name"`
	StartDate models.Date `json:"start_date"`
	EndDate   models.Date `json:"end_date"`
	IsManual  bool        `json:"is_manual"`
	Current   bool        `json:"current"`
}

// InternSchedule is the full schedule payload for one intern.
type InternSchedule struct {
	InternID      string              `json:"intern_id"`
	InternName    string              `json:"intern_name"`
	Status        models.InternStatus `json:"status"`
	ExtensionDays int                 `json:"extension_days"`
	Entries       []ScheduleEntry     `json:"entries"`
}

// ApplyExtensionRequest adjusts the cumulative extension for an intern.
// ExtensionDays is the new total, not a delta; UnitID optionally targets the
// rotation to resize.
type ApplyExtensionRequest struct {
	ExtensionDays int                        `json:"extension_days" validate:"gte=0"`
	Reason        models.ExtensionReasonCode `json:"reason" validate:"required,oneof=PRESENTATION INTERNAL_QUERY LEAVE OTHER"`
	Notes         string                     `json:"notes"`
	UnitID        string                     `json:"unit_id"`
}

// ApplyExtensionResult reports the outcome of an extension adjustment.
type ApplyExtensionResult struct {
	Delta           int                 `json:"delta"`
	Status          models.InternStatus `json:"status"`
	ResizedRotation *models.Rotation    `json:"resized_rotation,omitempty"`
	Warning         string              `json:"warning,omitempty"`
}
