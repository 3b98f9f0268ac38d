package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/intern-rotation-api/internal/dto"
	"github.com/noah-isme/intern-rotation-api/internal/service"
	appErrors "github.com/noah-isme/intern-rotation-api/pkg/errors"
	"github.com/noah-isme/intern-rotation-api/pkg/jobs"
	"github.com/noah-isme/intern-rotation-api/pkg/response"
)

// JobAdvanceAll is the queue job type for a batch advance run.
const JobAdvanceAll = "rotations.advance_all"

// RotationHandler handles rotation endpoints.
type RotationHandler struct {
	service *service.RotationService
	queue   *jobs.Queue
}

// NewRotationHandler constructs a rotation handler. The queue is optional;
// without one the batch advance endpoint runs synchronously.
func NewRotationHandler(svc *service.RotationService, queue *jobs.Queue) *RotationHandler {
	return &RotationHandler{service: svc, queue: queue}
}

// Create godoc
// @Summary Create manual rotation
// @Description Inserts a manually scheduled rotation. Overlapping date ranges are rejected.
// @Tags Rotations
// @Accept json
// @Produce json
// @Param payload body dto.CreateRotationRequest true "Rotation payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /rotations [post]
func (h *RotationHandler) Create(c *gin.Context) {
	var req dto.CreateRotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rotation, err := h.service.CreateManual(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rotation)
}

// Delete godoc
// @Summary Delete rotation
// @Tags Rotations
// @Param id path string true "Rotation ID"
// @Success 204
// @Router /rotations/{id} [delete]
func (h *RotationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reassign godoc
// @Summary Reassign rotation unit
// @Description Changes which unit a rotation covers while keeping its dates.
// @Tags Rotations
// @Accept json
// @Produce json
// @Param id path string true "Rotation ID"
// @Param payload body dto.ReassignUnitRequest true "Target unit"
// @Success 200 {object} response.Envelope
// @Router /rotations/{id}/unit [put]
func (h *RotationHandler) Reassign(c *gin.Context) {
	var req dto.ReassignUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.ReassignUnit(c.Request.Context(), c.Param("id"), req.UnitID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"reassigned": true}, nil)
}

// AdvanceAll godoc
// @Summary Advance every active intern
// @Description Runs the scheduler across all active and extended interns. With async=true the run is queued and a job id returned.
// @Tags Rotations
// @Produce json
// @Param async query bool false "Queue the run instead of waiting"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /rotations/advance [post]
func (h *RotationHandler) AdvanceAll(c *gin.Context) {
	if c.Query("async") == "true" && h.queue != nil {
		jobID := uuid.NewString()
		err := h.queue.Enqueue(jobs.Job{ID: jobID, Type: JobAdvanceAll})
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusServiceUnavailable, "failed to queue advance run"))
			return
		}
		response.JSON(c, http.StatusAccepted, gin.H{"job_id": jobID}, nil)
		return
	}

	result := h.service.AdvanceAll(c.Request.Context())
	response.JSON(c, http.StatusOK, result, nil)
}
