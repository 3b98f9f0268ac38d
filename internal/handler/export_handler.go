package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-rotation-api/internal/service"
	"github.com/noah-isme/intern-rotation-api/pkg/response"
)

// ExportHandler serves rendered roster files.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Roster godoc
// @Summary Export rotation roster
// @Description Streams the current roster as CSV (default) or PDF.
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /exports/roster [get]
func (h *ExportHandler) Roster(c *gin.Context) {
	format := service.RosterFormat(c.DefaultQuery("format", "csv"))
	data, contentType, err := h.service.RenderRoster(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition("rotation-roster", string(format)))
	c.Data(http.StatusOK, contentType, data)
}

// Archive godoc
// @Summary Archive a roster export
// @Description Renders the roster, stores it on disk and returns a signed download token.
// @Tags Exports
// @Produce json
// @Param format query string false "csv or pdf" default(csv)
// @Success 201 {object} response.Envelope
// @Router /exports/roster/archive [post]
func (h *ExportHandler) Archive(c *gin.Context) {
	format := service.RosterFormat(c.DefaultQuery("format", "csv"))
	result, err := h.service.ArchiveRoster(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download an archived export
// @Description Streams a previously archived export. The signed token is the only credential.
// @Tags Exports
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	path, err := h.service.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func contentDisposition(name, ext string) string {
	stamp := time.Now().UTC().Format("2006-01-02")
	return fmt.Sprintf(`attachment; filename="%s-%s.%s"`, name, stamp, ext)
}
