package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/banco-questoes-web/internal/dto"
	"github.com/noah-isme/banco-questoes-web/internal/models"
	"github.com/noah-isme/banco-questoes-web/internal/service"
)

func TestSearchHandlerSyncSearch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	year := 2020
	filters := &filterServiceMock{snapshot: models.FilterSnapshot{Year: &year}}
	search := &searchServiceMock{
		state: models.SearchState{Questions: []models.Question{{ID: 1, Statement: "x"}}},
		note:  &models.Notification{Kind: models.NotificationSuccess, Title: "Busca realizada"},
	}
	handler := NewSearchHandler(filters, search, service.NewPresenterService(false, false))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/buscas", nil)
	withSession(c)

	handler.Search(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, search.searched, 1)
	assert.Equal(t, 2020, *search.searched[0].Year)
	assert.Empty(t, search.started)

	var result SearchResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
	assert.Equal(t, dto.GridResults, result.Grid.State)
	require.NotNil(t, result.Notification)
	assert.Nil(t, search.note)
}

func TestSearchHandlerAsyncSearch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	search := &searchServiceMock{}
	handler := NewSearchHandler(&filterServiceMock{}, search, service.NewPresenterService(false, false))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/buscas?async=true", nil)
	withSession(c)

	handler.Search(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, search.started, 1)

	var result SearchResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
	assert.Equal(t, models.SearchLoading, result.Status)
	assert.Equal(t, dto.GridLoading, result.Grid.State)
	assert.Equal(t, service.SkeletonCards, result.Grid.Skeletons)
}

func TestSearchHandlerCurrentDoesNotConsumeNotification(t *testing.T) {
	gin.SetMode(gin.TestMode)
	note := &models.Notification{Kind: models.NotificationDestructive, Title: "Erro na busca"}
	search := &searchServiceMock{state: models.SearchState{Searched: true, Status: models.SearchFailed, Notification: note}, note: note}
	handler := NewSearchHandler(&filterServiceMock{}, search, service.NewPresenterService(false, false))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/buscas/atual", nil)
	withSession(c)

	handler.Current(c)

	require.Equal(t, http.StatusOK, w.Code)
	var result SearchResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
	assert.Equal(t, dto.GridEmpty, result.Grid.State)
	require.NotNil(t, result.Notification)
	assert.Equal(t, models.NotificationDestructive, result.Notification.Kind)
	assert.NotNil(t, search.note)
}

func TestSearchHandlerResolution(t *testing.T) {
	gin.SetMode(gin.TestMode)
	search := &searchServiceMock{questions: map[int]models.Question{
		3: {ID: 3, CorrectAnswer: "B", Resolution: "Explicação", VideoURL: "https://youtu.be/dQw4w9WgXcQ"},
	}}
	handler := NewSearchHandler(&filterServiceMock{}, search, service.NewPresenterService(false, false))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/questoes/3/resolucao", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	withSession(c)
	handler.Resolution(c)

	require.Equal(t, http.StatusOK, w.Code)
	var detail dto.QuestionDetail
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &detail))
	assert.Equal(t, "B", detail.CorrectAnswer)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", detail.VideoEmbedURL)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/questoes/99/resolucao", nil)
	c.Params = gin.Params{{Key: "id", Value: "99"}}
	withSession(c)
	handler.Resolution(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
