package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	"github.com/noah-isme/banco-questoes-web/internal/service"
	appErrors "github.com/noah-isme/banco-questoes-web/pkg/errors"
	"github.com/noah-isme/banco-questoes-web/pkg/response"
)

// FilterHandler exposes the filter controller as JSON.
type FilterHandler struct {
	filters filterService
}

// NewFilterHandler constructs a filter handler.
func NewFilterHandler(filters filterService) *FilterHandler {
	return &FilterHandler{filters: filters}
}

// Reference godoc
// @Summary Reference data for the filter form
// @Tags Filters
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /referencias [get]
func (h *FilterHandler) Reference(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	ref, err := h.filters.Reference(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ref)
}

// Current godoc
// @Summary Current filter selection
// @Tags Filters
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /filtros [get]
func (h *FilterHandler) Current(c *gin.Context) {
	h.respond(c, func(sessionID string) (models.FilterSnapshot, error) {
		return h.filters.Current(c.Request.Context(), sessionID)
	})
}

// SetField godoc
// @Summary Assign a scalar filter field
// @Description Assigning the selected difficulty again clears it.
// @Tags Filters
// @Accept json
// @Produce json
// @Param payload body service.SetFieldRequest true "Field and value"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /filtros/campo [put]
func (h *FilterHandler) SetField(c *gin.Context) {
	var req service.SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	h.respond(c, func(sessionID string) (models.FilterSnapshot, error) {
		return h.filters.SetField(c.Request.Context(), sessionID, req)
	})
}

// ClearField godoc
// @Summary Clear a scalar filter field
// @Tags Filters
// @Produce json
// @Param field path string true "materia_id, vestibular_id, ano or dificuldade"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /filtros/campo/{field} [delete]
func (h *FilterHandler) ClearField(c *gin.Context) {
	field := models.FilterField(c.Param("field"))
	h.respond(c, func(sessionID string) (models.FilterSnapshot, error) {
		return h.filters.ClearField(c.Request.Context(), sessionID, field)
	})
}

// Reset godoc
// @Summary Clear every filter
// @Tags Filters
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /filtros [delete]
func (h *FilterHandler) Reset(c *gin.Context) {
	h.respond(c, func(sessionID string) (models.FilterSnapshot, error) {
		return h.filters.Reset(c.Request.Context(), sessionID)
	})
}

// ToggleTopic godoc
// @Summary Toggle a topic in the selection
// @Tags Filters
// @Produce json
// @Param id path int true "Topic ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /filtros/assuntos/{id}/toggle [post]
func (h *FilterHandler) ToggleTopic(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, func(sessionID string) (models.FilterSnapshot, error) {
		return h.filters.ToggleTopic(c.Request.Context(), sessionID, id)
	})
}

func (h *FilterHandler) respond(c *gin.Context, fn func(sessionID string) (models.FilterSnapshot, error)) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	snapshot, err := fn(sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, snapshot, map[string]interface{}{"query": service.EncodeQuery(snapshot)})
}
