package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/banco-questoes-web/internal/models"
)

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestFilterHandlerSetField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &filterServiceMock{}
	handler := NewFilterHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/api/v1/filtros/campo", bytes.NewBufferString(`{"field":"materia_id","value":5}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	withSession(c)

	handler.SetField(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mock.setCalls, 1)
	assert.Equal(t, models.FieldSubject, mock.setCalls[0].Field)
	env := decode(t, w)
	assert.Equal(t, "materia_id=5", env.Meta["query"])
}

func TestFilterHandlerSetFieldInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &filterServiceMock{}
	handler := NewFilterHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/api/v1/filtros/campo", bytes.NewBufferString(`invalid`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	withSession(c)

	handler.SetField(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mock.setCalls)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
}

func TestFilterHandlerClearUnknownField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewFilterHandler(&filterServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/v1/filtros/campo/cor", nil)
	c.Params = gin.Params{{Key: "field", Value: "cor"}}
	withSession(c)

	handler.ClearField(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilterHandlerToggleTopic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &filterServiceMock{}
	handler := NewFilterHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/filtros/assuntos/10/toggle", nil)
	c.Params = gin.Params{{Key: "id", Value: "10"}}
	withSession(c)

	handler.ToggleTopic(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{10}, mock.toggleCalls)
	assert.Equal(t, "assunto_id=10", decode(t, w).Meta["query"])
}

func TestFilterHandlerToggleTopicBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &filterServiceMock{}
	handler := NewFilterHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/filtros/assuntos/abc/toggle", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	withSession(c)

	handler.ToggleTopic(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mock.toggleCalls)
}

func TestFilterHandlerRequiresSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewFilterHandler(&filterServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/filtros", nil)

	handler.Current(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SESSION_MISSING", decode(t, w).Error.Code)
}

func TestFilterHandlerReference(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewFilterHandler(&filterServiceMock{ref: models.ReferenceData{
		Subjects: []models.Subject{{ID: 1, Name: "Matemática"}},
		Years:    []int{2024},
	}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/referencias", nil)
	withSession(c)

	handler.Reference(c)

	require.Equal(t, http.StatusOK, w.Code)
	var ref models.ReferenceData
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &ref))
	assert.Equal(t, "Matemática", ref.Subjects[0].Name)
	assert.Equal(t, []int{2024}, ref.Years)
}

func TestFilterHandlerReset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	year := 2022
	mock := &filterServiceMock{snapshot: models.FilterSnapshot{Year: &year}}
	handler := NewFilterHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/v1/filtros", nil)
	withSession(c)

	handler.Reset(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, mock.resetCalls)
	env := decode(t, w)
	assert.Equal(t, "", env.Meta["query"])
}
