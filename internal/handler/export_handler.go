package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	"github.com/noah-isme/banco-questoes-web/internal/service"
	appErrors "github.com/noah-isme/banco-questoes-web/pkg/errors"
	"github.com/noah-isme/banco-questoes-web/pkg/response"
)

type stateReader interface {
	State(sessionID string) models.SearchState
}

// ExportHandler downloads the session's current result list.
type ExportHandler struct {
	search   stateReader
	exporter *service.ExportService
	enabled  bool
}

// NewExportHandler constructs an export handler.
func NewExportHandler(search stateReader, exporter *service.ExportService, enabled bool) *ExportHandler {
	return &ExportHandler{search: search, exporter: exporter, enabled: enabled}
}

// CSV godoc
// @Summary Download the current results as CSV
// @Tags Export
// @Produce text/csv
// @Success 200 {file} file
// @Router /exportar.csv [get]
func (h *ExportHandler) CSV(c *gin.Context) {
	h.download(c, service.ExportCSV)
}

// PDF godoc
// @Summary Download the current results as PDF
// @Tags Export
// @Produce application/pdf
// @Success 200 {file} file
// @Router /exportar.pdf [get]
func (h *ExportHandler) PDF(c *gin.Context) {
	h.download(c, service.ExportPDF)
}

func (h *ExportHandler) download(c *gin.Context, format service.ExportFormat) {
	if !h.enabled {
		response.Error(c, appErrors.ErrFeatureDisabled)
		return
	}
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	state := h.search.State(sessionID)
	if state.Loading {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "a search is still running"))
		return
	}

	file, err := h.exporter.Render(format, state.Questions)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
