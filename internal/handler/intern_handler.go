package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-rotation-api/internal/dto"
	"github.com/noah-isme/intern-rotation-api/internal/models"
	"github.com/noah-isme/intern-rotation-api/internal/service"
	appErrors "github.com/noah-isme/intern-rotation-api/pkg/errors"
	"github.com/noah-isme/intern-rotation-api/pkg/response"
)

// InternHandler handles intern endpoints, including the schedule and
// extension surfaces backed by the rotation engine.
type InternHandler struct {
	interns    *service.InternService
	rotations  *service.RotationService
	extensions *service.ExtensionService
}

// NewInternHandler constructs an intern handler.
func NewInternHandler(interns *service.InternService, rotations *service.RotationService, extensions *service.ExtensionService) *InternHandler {
	return &InternHandler{interns: interns, rotations: rotations, extensions: extensions}
}

// List godoc
// @Summary List interns
// @Tags Interns
// @Produce json
// @Param batch query string false "Filter by batch"
// @Param status query string false "Filter by status"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /interns [get]
func (h *InternHandler) List(c *gin.Context) {
	var filter models.InternFilter
	filter.Batch = models.InternBatch(c.Query("batch"))
	filter.Status = models.InternStatus(c.Query("status"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	interns, pagination, err := h.interns.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, interns, pagination)
}

// Get godoc
// @Summary Get intern by id
// @Tags Interns
// @Produce json
// @Param id path string true "Intern ID"
// @Success 200 {object} response.Envelope
// @Router /interns/{id} [get]
func (h *InternHandler) Get(c *gin.Context) {
	intern, err := h.interns.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intern, nil)
}

// Create godoc
// @Summary Register intern
// @Tags Interns
// @Accept json
// @Produce json
// @Param payload body dto.CreateInternRequest true "Intern payload"
// @Success 201 {object} response.Envelope
// @Router /interns [post]
func (h *InternHandler) Create(c *gin.Context) {
	var req dto.CreateInternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	intern, err := h.interns.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, intern)
}

// Update godoc
// @Summary Update intern
// @Tags Interns
// @Accept json
// @Produce json
// @Param id path string true "Intern ID"
// @Param payload body dto.UpdateInternRequest true "Intern payload"
// @Success 200 {object} response.Envelope
// @Router /interns/{id} [put]
func (h *InternHandler) Update(c *gin.Context) {
	var req dto.UpdateInternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	intern, err := h.interns.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intern, nil)
}

// Delete godoc
// @Summary Delete intern
// @Tags Interns
// @Param id path string true "Intern ID"
// @Success 204
// @Router /interns/{id} [delete]
func (h *InternHandler) Delete(c *gin.Context) {
	if err := h.interns.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Schedule godoc
// @Summary Get intern schedule
// @Description Returns the full rotation schedule, lazily advancing it first.
// @Tags Interns
// @Produce json
// @Param id path string true "Intern ID"
// @Success 200 {object} response.Envelope
// @Router /interns/{id}/schedule [get]
func (h *InternHandler) Schedule(c *gin.Context) {
	schedule, err := h.rotations.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Status godoc
// @Summary Derive intern status
// @Tags Interns
// @Produce json
// @Param id path string true "Intern ID"
// @Success 200 {object} response.Envelope
// @Router /interns/{id}/status [get]
func (h *InternHandler) Status(c *gin.Context) {
	id := c.Param("id")
	status, err := h.rotations.ResolveInternStatus(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.InternStatusResponse{InternID: id, Status: status}, nil)
}

// Advance godoc
// @Summary Advance one intern's schedule
// @Tags Interns
// @Produce json
// @Param id path string true "Intern ID"
// @Success 200 {object} response.Envelope
// @Router /interns/{id}/advance [post]
func (h *InternHandler) Advance(c *gin.Context) {
	created, err := h.rotations.SeedOrAdvance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AdvanceResponse{Created: created}, nil)
}

// ApplyExtension godoc
// @Summary Apply an extension adjustment
// @Tags Interns
// @Accept json
// @Produce json
// @Param id path string true "Intern ID"
// @Param payload body dto.ApplyExtensionRequest true "Extension payload"
// @Success 200 {object} response.Envelope
// @Router /interns/{id}/extension [put]
func (h *InternHandler) ApplyExtension(c *gin.Context) {
	var req dto.ApplyExtensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.extensions.Apply(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	var meta map[string]interface{}
	if result.Warning != "" {
		meta = map[string]interface{}{"warning": result.Warning}
	}
	response.JSON(c, http.StatusOK, result, nil, meta)
}

// ExtensionHistory godoc
// @Summary List extension audit records
// @Tags Interns
// @Produce json
// @Param id path string true "Intern ID"
// @Success 200 {object} response.Envelope
// @Router /interns/{id}/extension [get]
func (h *InternHandler) ExtensionHistory(c *gin.Context) {
	history, err := h.extensions.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// GenerateRotations godoc
// @Summary Generate a full rotation plan
// @Tags Interns
// @Produce json
// @Param id path string true "Intern ID"
// @Success 201 {object} response.Envelope
// @Router /interns/{id}/rotations/generate [post]
func (h *InternHandler) GenerateRotations(c *gin.Context) {
	id := c.Param("id")
	intern, err := h.interns.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	rotations, err := h.rotations.GenerateForIntern(c.Request.Context(), id, intern.StartDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rotations)
}
