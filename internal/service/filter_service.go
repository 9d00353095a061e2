package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	appErrors "github.com/noah-isme/banco-questoes-web/pkg/errors"
)

type referenceReader interface {
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	ListExams(ctx context.Context) ([]models.Exam, error)
	ListTopics(ctx context.Context) ([]models.Topic, error)
}

// SetFieldRequest assigns a scalar filter field.
type SetFieldRequest struct {
	Field models.FilterField `json:"field" form:"field" validate:"required,oneof=materia_id vestibular_id ano dificuldade"`
	Value int                `json:"value" form:"value" validate:"gte=0"`
}

// FilterService is the filter controller. It owns the session's filter state
// and the reference data used to populate the filter choices.
type FilterService struct {
	catalog   referenceReader
	sessions  *SessionService
	years     []int
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFilterService creates a filter service.
func NewFilterService(catalog referenceReader, sessions *SessionService, years []int, validate *validator.Validate, logger *zap.Logger) *FilterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilterService{
		catalog:   catalog,
		sessions:  sessions,
		years:     append([]int(nil), years...),
		validator: validate,
		logger:    logger,
	}
}

// LoadReferenceData fetches subjects, exams and topics concurrently. A failed
// collection is logged and left empty; the others are still returned.
func (s *FilterService) LoadReferenceData(ctx context.Context) models.ReferenceData {
	ref := models.ReferenceData{
		Subjects: []models.Subject{},
		Exams:    []models.Exam{},
		Topics:   []models.Topic{},
		Years:    append([]int(nil), s.years...),
	}

	var g errgroup.Group
	g.Go(func() error {
		subjects, err := s.catalog.ListSubjects(ctx)
		if err != nil {
			s.logger.Warn("failed to load subjects", zap.Error(err))
			return nil
		}
		ref.Subjects = subjects
		return nil
	})
	g.Go(func() error {
		exams, err := s.catalog.ListExams(ctx)
		if err != nil {
			s.logger.Warn("failed to load exams", zap.Error(err))
			return nil
		}
		ref.Exams = exams
		return nil
	})
	g.Go(func() error {
		topics, err := s.catalog.ListTopics(ctx)
		if err != nil {
			s.logger.Warn("failed to load topics", zap.Error(err))
			return nil
		}
		ref.Topics = topics
		return nil
	})
	_ = g.Wait()

	return ref
}

// Reference returns the session's reference data, loading it on first use.
func (s *FilterService) Reference(ctx context.Context, sessionID string) (models.ReferenceData, error) {
	state, err := s.sessions.Update(ctx, sessionID, func(st *models.SessionState) error {
		if st.Reference == nil {
			ref := s.LoadReferenceData(ctx)
			st.Reference = &ref
		}
		return nil
	})
	if err != nil {
		return models.ReferenceData{}, err
	}
	return *state.Reference, nil
}

// Current returns the in-progress snapshot without committing it.
func (s *FilterService) Current(ctx context.Context, sessionID string) (models.FilterSnapshot, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return models.FilterSnapshot{}, err
	}
	return state.Filters, nil
}

// SetField assigns one scalar filter field.
func (s *FilterService) SetField(ctx context.Context, sessionID string, req SetFieldRequest) (models.FilterSnapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.FilterSnapshot{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter field")
	}
	return s.mutate(ctx, sessionID, func(f *FilterState) error {
		return f.SetField(req.Field, req.Value)
	})
}

// ClearField unsets one scalar filter field.
func (s *FilterService) ClearField(ctx context.Context, sessionID string, field models.FilterField) (models.FilterSnapshot, error) {
	if !field.Valid() {
		return models.FilterSnapshot{}, appErrors.Clone(appErrors.ErrValidation, "unknown filter field")
	}
	return s.mutate(ctx, sessionID, func(f *FilterState) error {
		return f.ClearField(field)
	})
}

// ToggleTopic flips membership of a topic in the selection.
func (s *FilterService) ToggleTopic(ctx context.Context, sessionID string, topicID int) (models.FilterSnapshot, error) {
	if topicID < 0 {
		return models.FilterSnapshot{}, appErrors.Clone(appErrors.ErrValidation, "invalid topic id")
	}
	return s.mutate(ctx, sessionID, func(f *FilterState) error {
		f.ToggleTopic(topicID)
		return nil
	})
}

// Reset clears every filter of the session. Reference data is reloaded on next use.
func (s *FilterService) Reset(ctx context.Context, sessionID string) (models.FilterSnapshot, error) {
	if err := s.sessions.Reset(ctx, sessionID); err != nil {
		return models.FilterSnapshot{}, err
	}
	return models.FilterSnapshot{}, nil
}

// Commit returns the current snapshot by value; later searches keep building on it.
func (s *FilterService) Commit(ctx context.Context, sessionID string) (models.FilterSnapshot, error) {
	current, err := s.Current(ctx, sessionID)
	if err != nil {
		return models.FilterSnapshot{}, err
	}
	return NewFilterState(current).Commit(), nil
}

func (s *FilterService) mutate(ctx context.Context, sessionID string, fn func(*FilterState) error) (models.FilterSnapshot, error) {
	state, err := s.sessions.Update(ctx, sessionID, func(st *models.SessionState) error {
		fs := NewFilterState(st.Filters)
		if err := fn(fs); err != nil {
			return err
		}
		st.Filters = fs.Commit()
		return nil
	})
	if err != nil {
		return models.FilterSnapshot{}, err
	}
	return state.Filters, nil
}
