package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	"github.com/noah-isme/banco-questoes-web/internal/service"
	appErrors "github.com/noah-isme/banco-questoes-web/pkg/errors"
	"github.com/noah-isme/banco-questoes-web/pkg/middleware/session"
)

type filterService interface {
	Reference(ctx context.Context, sessionID string) (models.ReferenceData, error)
	Current(ctx context.Context, sessionID string) (models.FilterSnapshot, error)
	SetField(ctx context.Context, sessionID string, req service.SetFieldRequest) (models.FilterSnapshot, error)
	ClearField(ctx context.Context, sessionID string, field models.FilterField) (models.FilterSnapshot, error)
	ToggleTopic(ctx context.Context, sessionID string, topicID int) (models.FilterSnapshot, error)
	Reset(ctx context.Context, sessionID string) (models.FilterSnapshot, error)
	Commit(ctx context.Context, sessionID string) (models.FilterSnapshot, error)
}

type searchService interface {
	Start(ctx context.Context, sessionID string, snapshot models.FilterSnapshot) models.SearchState
	Search(ctx context.Context, sessionID string, snapshot models.FilterSnapshot) models.SearchState
	State(sessionID string) models.SearchState
	TakeNotification(sessionID string) *models.Notification
	Question(sessionID string, id int) (models.Question, error)
}

func sessionFromContext(c *gin.Context) (string, error) {
	id := session.Value(c)
	if id == "" {
		return "", appErrors.Clone(appErrors.ErrSessionMissing, "session cookie required")
	}
	return id, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return v, nil
}
