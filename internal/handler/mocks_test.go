package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	"github.com/noah-isme/banco-questoes-web/internal/service"
	appErrors "github.com/noah-isme/banco-questoes-web/pkg/errors"
)

const testSession = "9b2e4c1a-7f3d-4e8b-a6c5-2d1f0e9b8a77"

type filterServiceMock struct {
	ref      models.ReferenceData
	snapshot models.FilterSnapshot
	err      error

	setCalls    []service.SetFieldRequest
	clearCalls  []models.FilterField
	toggleCalls []int
	resetCalls  int
}

func (m *filterServiceMock) Reference(ctx context.Context, sessionID string) (models.ReferenceData, error) {
	return m.ref, m.err
}

func (m *filterServiceMock) Current(ctx context.Context, sessionID string) (models.FilterSnapshot, error) {
	return m.snapshot, m.err
}

func (m *filterServiceMock) SetField(ctx context.Context, sessionID string, req service.SetFieldRequest) (models.FilterSnapshot, error) {
	m.setCalls = append(m.setCalls, req)
	if m.err != nil {
		return models.FilterSnapshot{}, m.err
	}
	if req.Field == models.FieldSubject {
		m.snapshot.SubjectID = &req.Value
	}
	return m.snapshot, nil
}

func (m *filterServiceMock) ClearField(ctx context.Context, sessionID string, field models.FilterField) (models.FilterSnapshot, error) {
	m.clearCalls = append(m.clearCalls, field)
	if !field.Valid() {
		return models.FilterSnapshot{}, appErrors.Clone(appErrors.ErrValidation, "unknown filter field")
	}
	return m.snapshot, m.err
}

func (m *filterServiceMock) Reset(ctx context.Context, sessionID string) (models.FilterSnapshot, error) {
	m.resetCalls++
	if m.err != nil {
		return models.FilterSnapshot{}, m.err
	}
	m.snapshot = models.FilterSnapshot{}
	return m.snapshot, nil
}

func (m *filterServiceMock) ToggleTopic(ctx context.Context, sessionID string, topicID int) (models.FilterSnapshot, error) {
	m.toggleCalls = append(m.toggleCalls, topicID)
	m.snapshot.TopicIDs = append(m.snapshot.TopicIDs, topicID)
	return m.snapshot, m.err
}

func (m *filterServiceMock) Commit(ctx context.Context, sessionID string) (models.FilterSnapshot, error) {
	return m.snapshot.Clone(), m.err
}

type searchServiceMock struct {
	state     models.SearchState
	note      *models.Notification
	questions map[int]models.Question

	started  []models.FilterSnapshot
	searched []models.FilterSnapshot
}

func (m *searchServiceMock) Start(ctx context.Context, sessionID string, snapshot models.FilterSnapshot) models.SearchState {
	m.started = append(m.started, snapshot)
	m.state.Loading = true
	m.state.Status = models.SearchLoading
	m.state.Searched = true
	m.state.Sequence++
	return m.state
}

func (m *searchServiceMock) Search(ctx context.Context, sessionID string, snapshot models.FilterSnapshot) models.SearchState {
	m.searched = append(m.searched, snapshot)
	m.state.Searched = true
	m.state.Status = models.SearchResults
	m.state.Sequence++
	return m.state
}

func (m *searchServiceMock) State(sessionID string) models.SearchState {
	return m.state
}

func (m *searchServiceMock) TakeNotification(sessionID string) *models.Notification {
	note := m.note
	m.note = nil
	return note
}

func (m *searchServiceMock) Question(sessionID string, id int) (models.Question, error) {
	if q, ok := m.questions[id]; ok {
		return q, nil
	}
	return models.Question{}, appErrors.Clone(appErrors.ErrNotFound, "question not found")
}

func withSession(c *gin.Context) {
	c.Set("session_id", testSession)
}
