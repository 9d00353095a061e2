package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	"github.com/noah-isme/banco-questoes-web/internal/service"
	appErrors "github.com/noah-isme/banco-questoes-web/pkg/errors"
)

// Template names registered by the web package.
const (
	IndexTemplate = "index.tmpl"
	ErrorTemplate = "error.tmpl"
)

// PageHandler serves the server-rendered page and its form actions. Every
// action redirects back to the page (303) so reloads never resubmit a form.
type PageHandler struct {
	filters   filterService
	search    searchService
	presenter *service.PresenterService
	apiPrefix string
	logger    *zap.Logger
}

// NewPageHandler constructs a page handler.
func NewPageHandler(filters filterService, search searchService, presenter *service.PresenterService, apiPrefix string, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{filters: filters, search: search, presenter: presenter, apiPrefix: apiPrefix, logger: logger}
}

// Index renders the filter form, the result grid and any pending notification.
func (h *PageHandler) Index(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	ctx := c.Request.Context()

	ref, err := h.filters.Reference(ctx, sessionID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	filters, err := h.filters.Current(ctx, sessionID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	state := h.search.State(sessionID)
	var note *models.Notification
	if !state.Loading {
		note = h.search.TakeNotification(sessionID)
	}

	c.Header("Cache-Control", "no-store")
	page := h.presenter.Page(ref, filters, state, note)
	page.APIPrefix = h.apiPrefix
	c.HTML(http.StatusOK, IndexTemplate, page)
}

// SetField handles the select and difficulty forms. An empty value clears the field.
func (h *PageHandler) SetField(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	field := models.FilterField(c.PostForm("field"))
	raw := strings.TrimSpace(c.PostForm("value"))

	if raw == "" {
		_, err = h.filters.ClearField(c.Request.Context(), sessionID, field)
	} else {
		value, convErr := strconv.Atoi(raw)
		if convErr != nil {
			h.renderError(c, appErrors.Wrap(convErr, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid filter value"))
			return
		}
		_, err = h.filters.SetField(c.Request.Context(), sessionID, service.SetFieldRequest{Field: field, Value: value})
	}
	if err != nil {
		h.renderError(c, err)
		return
	}
	redirectHome(c)
}

// ClearField handles the "any" buttons next to each select.
func (h *PageHandler) ClearField(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if _, err := h.filters.ClearField(c.Request.Context(), sessionID, models.FilterField(c.PostForm("field"))); err != nil {
		h.renderError(c, err)
		return
	}
	redirectHome(c)
}

// ResetFilters handles the "limpar filtros" button.
func (h *PageHandler) ResetFilters(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if _, err := h.filters.Reset(c.Request.Context(), sessionID); err != nil {
		h.renderError(c, err)
		return
	}
	redirectHome(c)
}

// ToggleTopic handles a click on a topic chip.
func (h *PageHandler) ToggleTopic(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	id, err := intParam(c, "id")
	if err != nil {
		h.renderError(c, err)
		return
	}
	if _, err := h.filters.ToggleTopic(c.Request.Context(), sessionID, id); err != nil {
		h.renderError(c, err)
		return
	}
	redirectHome(c)
}

// Search commits the filters and dispatches a search. The page renders the
// loading state until the result arrives.
func (h *PageHandler) Search(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	snapshot, err := h.filters.Commit(c.Request.Context(), sessionID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.search.Start(c.Request.Context(), sessionID, snapshot)
	redirectHome(c)
}

func (h *PageHandler) renderError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("page request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.HTML(appErr.Status, ErrorTemplate, gin.H{"Error": appErr})
}

func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}
