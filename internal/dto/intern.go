package dto

import (
	"github.com/noah-isme/intern-rotation-api/internal/models"
)

// CreateInternRequest registers a new trainee.
type CreateInternRequest struct {
	Name      string             `json:"name" validate:"required"`
	Batch     models.InternBatch `json:"batch" validate:"required,oneof=MORNING EVENING"`
	StartDate models.Date        `json:"start_date" validate:"required"`
	// GenerateRotations overrides the configured auto-generation default
	// for this one intern when set.
	GenerateRotations *bool `json:"generate_rotations,omitempty"`
}

// UpdateInternRequest edits intern master data. Status and extension days
// are engine-derived and not editable here.
type UpdateInternRequest struct {
	Name      string             `json:"name" validate:"required"`
	Batch     models.InternBatch `json:"batch" validate:"required,oneof=MORNING EVENING"`
	StartDate models.Date        `json:"start_date" validate:"required"`
}

// InternStatusResponse is the read-only derived status payload.
type InternStatusResponse struct {
	InternID string              `json:"intern_id"`
	Status   models.InternStatus `json:"status"`
}
