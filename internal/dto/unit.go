package dto

import (
	"github.com/noah-isme/intern-rotation-api/internal/models"
)

// CreateUnitRequest registers a new training unit.
type CreateUnitRequest struct {
	Name         string              `json:"name" validate:"required"`
	DurationDays int                 `json:"duration_days" validate:"required,gt=0"`
	Workload     models.UnitWorkload `json:"workload" validate:"required,oneof=LOW MEDIUM HIGH"`
	Position     *int                `json:"position,omitempty"`
}

// UpdateUnitRequest edits a training unit.
type UpdateUnitRequest struct {
	Name         string              `json:"name" validate:"required"`
	DurationDays int                 `json:"duration_days" validate:"required,gt=0"`
	Workload     models.UnitWorkload `json:"workload" validate:"required,oneof=LOW MEDIUM HIGH"`
	Position     *int                `json:"position,omitempty"`
}
