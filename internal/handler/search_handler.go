package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/banco-questoes-web/internal/dto"
	"github.com/noah-isme/banco-questoes-web/internal/models"
	"github.com/noah-isme/banco-questoes-web/internal/service"
	"github.com/noah-isme/banco-questoes-web/pkg/response"
)

// SearchResult is the JSON view of the search orchestrator.
type SearchResult struct {
	Status       models.SearchStatus   `json:"status"`
	Sequence     uint64                `json:"sequence"`
	Filters      models.FilterSnapshot `json:"filtros"`
	Grid         dto.GridView          `json:"grid"`
	Notification *models.Notification  `json:"notification,omitempty"`
}

// SearchHandler exposes the search orchestrator and the question detail view as JSON.
type SearchHandler struct {
	filters   filterService
	search    searchService
	presenter *service.PresenterService
}

// NewSearchHandler constructs a search handler.
func NewSearchHandler(filters filterService, search searchService, presenter *service.PresenterService) *SearchHandler {
	return &SearchHandler{filters: filters, search: search, presenter: presenter}
}

// Search godoc
// @Summary Search questions with the current filters
// @Description Runs synchronously unless async=true, in which case 202 is returned and completion is pushed on /ws.
// @Tags Search
// @Produce json
// @Param async query bool false "Dispatch to the worker queue"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /buscas [post]
func (h *SearchHandler) Search(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	snapshot, err := h.filters.Commit(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	async, _ := strconv.ParseBool(c.Query("async"))
	if async {
		state := h.search.Start(c.Request.Context(), sessionID, snapshot)
		response.Accepted(c, h.result(state, nil))
		return
	}

	state := h.search.Search(c.Request.Context(), sessionID, snapshot)
	note := h.search.TakeNotification(sessionID)
	response.OK(c, h.result(state, note))
}

// Current godoc
// @Summary Current search state and result grid
// @Description Pending notifications are included but not consumed.
// @Tags Search
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /buscas/atual [get]
func (h *SearchHandler) Current(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	state := h.search.State(sessionID)
	response.OK(c, h.result(state, state.Notification))
}

// Resolution godoc
// @Summary Detail view of a question from the current results
// @Tags Search
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /questoes/{id}/resolucao [get]
func (h *SearchHandler) Resolution(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	q, err := h.search.Question(sessionID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.presenter.Detail(q))
}

func (h *SearchHandler) result(state models.SearchState, note *models.Notification) SearchResult {
	return SearchResult{
		Status:       state.Status,
		Sequence:     state.Sequence,
		Filters:      state.Snapshot,
		Grid:         h.presenter.Grid(state),
		Notification: note,
	}
}
