package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	appErrors "github.com/noah-isme/banco-questoes-web/pkg/errors"
	"github.com/noah-isme/banco-questoes-web/pkg/jobs"
)

// Search outcomes reported to metrics.
const (
	SearchOutcomeSuccess = "success"
	SearchOutcomeFailure = "failure"
	SearchOutcomeStale   = "stale"
)

// SearchJobType tags search jobs on the worker queue.
const SearchJobType = "question_search"

const (
	successTitle       = "Busca realizada"
	failureTitle       = "Erro na busca"
	failureDescription = "Não foi possível buscar as questões. Verifique se o servidor está rodando."
)

type questionSearcher interface {
	SearchQuestions(ctx context.Context, rawQuery string) ([]models.Question, error)
}

// Notifier pushes search events to the open connections of a session.
type Notifier interface {
	Publish(sessionID string, event models.SearchEvent)
}

// Dispatcher hands search work to background workers.
type Dispatcher interface {
	Enqueue(job jobs.Job) error
}

type searchTicket struct {
	SessionID string
	Sequence  uint64
	Query     string
}

type searchSession struct {
	state   models.SearchState
	touched time.Time
}

// SearchService is the search orchestrator. It serialises filter snapshots,
// queries the backend and tracks the idle/loading/results state per session.
// Every search gets a sequence number and only the response to the most
// recently issued search is applied.
type SearchService struct {
	catalog    questionSearcher
	dispatcher Dispatcher
	notifier   Notifier
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*searchSession
}

// NewSearchService creates a search service. notifier and metrics may be nil.
func NewSearchService(catalog questionSearcher, notifier Notifier, metrics *MetricsService, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		catalog:  catalog,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*searchSession),
	}
}

// SetDispatcher wires the worker queue used by Start.
func (s *SearchService) SetDispatcher(d Dispatcher) {
	s.dispatcher = d
}

// EncodeQuery serialises a snapshot in field order materia_id, vestibular_id,
// ano, assunto_id (repeated once per topic), dificuldade. Absent or zero
// scalar fields are omitted.
func EncodeQuery(snapshot models.FilterSnapshot) string {
	var b strings.Builder
	add := func(key string, value int) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(value))
	}
	addScalar := func(field models.FilterField) {
		if v, ok := snapshot.Value(field); ok && v != 0 {
			add(string(field), v)
		}
	}

	addScalar(models.FieldSubject)
	addScalar(models.FieldExam)
	addScalar(models.FieldYear)
	for _, id := range snapshot.TopicIDs {
		add(models.FieldTopic, id)
	}
	addScalar(models.FieldDifficulty)

	return b.String()
}

// Start marks the session as loading and dispatches the search to the worker
// queue. Without a dispatcher the search runs before Start returns.
func (s *SearchService) Start(ctx context.Context, sessionID string, snapshot models.FilterSnapshot) models.SearchState {
	ticket := s.begin(sessionID, snapshot)
	if s.dispatcher == nil {
		s.execute(ctx, ticket)
		return s.State(sessionID)
	}
	if err := s.dispatcher.Enqueue(jobs.Job{Type: SearchJobType, Payload: ticket}); err != nil {
		s.complete(ticket, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to dispatch search"))
	}
	return s.State(sessionID)
}

// Search runs a search synchronously and returns the resulting state.
func (s *SearchService) Search(ctx context.Context, sessionID string, snapshot models.FilterSnapshot) models.SearchState {
	ticket := s.begin(sessionID, snapshot)
	s.execute(ctx, ticket)
	return s.State(sessionID)
}

// HandleJob is the worker queue handler for search jobs.
func (s *SearchService) HandleJob(ctx context.Context, job jobs.Job) error {
	ticket, ok := job.Payload.(searchTicket)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}
	s.execute(ctx, ticket)
	return nil
}

// State returns a copy of the session's search state.
func (s *SearchService) State(sessionID string) models.SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return models.SearchState{Status: models.SearchIdle, Questions: []models.Question{}}
	}
	return copyState(sess.state)
}

// TakeNotification returns the pending notification once and clears it.
func (s *SearchService) TakeNotification(sessionID string) *models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.state.Notification == nil {
		return nil
	}
	note := *sess.state.Notification
	sess.state.Notification = nil
	return &note
}

// Question returns one question from the session's current result list.
func (s *SearchService) Question(sessionID string, id int) (models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		if q, found := models.FindQuestion(sess.state.Questions, id); found {
			return q, nil
		}
	}
	return models.Question{}, appErrors.Clone(appErrors.ErrNotFound, "question not found")
}

// Prune drops idle sessions untouched for longer than maxIdle. Sessions with
// a search in flight are kept.
func (s *SearchService) Prune(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, sess := range s.sessions {
		if sess.state.Loading || sess.touched.After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	return removed
}

func (s *SearchService) begin(sessionID string, snapshot models.FilterSnapshot) searchTicket {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &searchSession{state: models.SearchState{Status: models.SearchIdle, Questions: []models.Question{}}}
		s.sessions[sessionID] = sess
	}
	sess.state.Sequence++
	sess.state.Status = models.SearchLoading
	sess.state.Loading = true
	sess.state.Searched = true
	sess.state.Snapshot = snapshot.Clone()
	sess.touched = s.now()
	seq := sess.state.Sequence
	s.mu.Unlock()

	s.publish(sessionID, models.SearchEvent{Type: models.EventSearchStarted, Sequence: seq})
	return searchTicket{SessionID: sessionID, Sequence: seq, Query: EncodeQuery(snapshot)}
}

func (s *SearchService) execute(ctx context.Context, ticket searchTicket) {
	questions, err := s.catalog.SearchQuestions(ctx, ticket.Query)
	s.complete(ticket, questions, err)
}

func (s *SearchService) complete(ticket searchTicket, questions []models.Question, err error) {
	s.mu.Lock()
	sess, ok := s.sessions[ticket.SessionID]
	if !ok || sess.state.Sequence != ticket.Sequence {
		s.mu.Unlock()
		s.metrics.RecordSearch(SearchOutcomeStale, 0)
		s.logger.Debug("discarding stale search response",
			zap.String("session_id", ticket.SessionID),
			zap.Uint64("sequence", ticket.Sequence))
		return
	}

	now := s.now()
	sess.touched = now
	sess.state.Loading = false

	var event models.SearchEvent
	if err != nil {
		sess.state.Status = models.SearchFailed
		sess.state.Questions = []models.Question{}
		note := models.Notification{
			Kind:        models.NotificationDestructive,
			Title:       failureTitle,
			Description: failureDescription,
			CreatedAt:   now,
		}
		sess.state.Notification = &note
		event = models.SearchEvent{Type: models.EventSearchFailed, Sequence: ticket.Sequence, Notification: &note}
	} else {
		if questions == nil {
			questions = []models.Question{}
		}
		sess.state.Status = models.SearchResults
		sess.state.Questions = questions
		note := models.Notification{
			Kind:        models.NotificationSuccess,
			Title:       successTitle,
			Description: CountLabel(len(questions)),
			CreatedAt:   now,
		}
		sess.state.Notification = &note
		event = models.SearchEvent{Type: models.EventSearchCompleted, Sequence: ticket.Sequence, Count: len(questions), Notification: &note}
	}
	s.mu.Unlock()

	if err != nil {
		s.metrics.RecordSearch(SearchOutcomeFailure, 0)
		s.logger.Error("question search failed",
			zap.String("session_id", ticket.SessionID),
			zap.Uint64("sequence", ticket.Sequence),
			zap.String("query", ticket.Query),
			zap.Error(err))
	} else {
		s.metrics.RecordSearch(SearchOutcomeSuccess, len(questions))
		s.logger.Info("question search completed",
			zap.String("session_id", ticket.SessionID),
			zap.Uint64("sequence", ticket.Sequence),
			zap.Int("count", len(questions)))
	}
	s.publish(ticket.SessionID, event)
}

func (s *SearchService) publish(sessionID string, event models.SearchEvent) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(sessionID, event)
}

// CountLabel renders "1 questão encontrada" / "N questões encontradas".
func CountLabel(n int) string {
	if n == 1 {
		return "1 questão encontrada"
	}
	return fmt.Sprintf("%d questões encontradas", n)
}

func copyState(st models.SearchState) models.SearchState {
	out := st
	out.Snapshot = st.Snapshot.Clone()
	out.Questions = append([]models.Question{}, st.Questions...)
	if st.Notification != nil {
		note := *st.Notification
		out.Notification = &note
	}
	return out
}
