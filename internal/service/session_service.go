package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	appErrors "github.com/noah-isme/banco-questoes-web/pkg/errors"
)

// SessionRepository abstracts persistence for per-browser session state.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*models.SessionState, error)
	Save(ctx context.Context, state *models.SessionState, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// expiringRepository is implemented by stores that must sweep expired
// sessions themselves. Redis expires keys on its own.
type expiringRepository interface {
	Prune() int
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// SessionService loads and stores session state, serialising updates per session.
type SessionService struct {
	repo    SessionRepository
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

// NewSessionService constructs a session service.
func NewSessionService(repo SessionRepository, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *SessionService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		repo:    repo,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		locks:   make(map[string]*sessionLock),
	}
}

// Load returns the stored session or a fresh one when none exists.
func (s *SessionService) Load(ctx context.Context, id string) (*models.SessionState, error) {
	start := time.Now()
	state, err := s.repo.Get(ctx, id)
	s.metrics.ObserveSessionStore("get", time.Since(start))
	if err != nil {
		if errors.Is(err, appErrors.ErrSessionMissing) {
			return &models.SessionState{ID: id}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return state, nil
}

// Save persists the session and refreshes its TTL.
func (s *SessionService) Save(ctx context.Context, state *models.SessionState) error {
	state.UpdatedAt = s.now().UTC()
	start := time.Now()
	err := s.repo.Save(ctx, state, s.ttl)
	s.metrics.ObserveSessionStore("save", time.Since(start))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save session")
	}
	return nil
}

// Update runs fn on the loaded session under a per-session lock and saves the result.
func (s *SessionService) Update(ctx context.Context, id string, fn func(*models.SessionState) error) (*models.SessionState, error) {
	unlock := s.lock(id)
	defer unlock()

	state, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Reset discards a session, filters and cached reference data included.
func (s *SessionService) Reset(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset session")
	}
	return nil
}

// Prune sweeps expired sessions from stores that do not expire them on their own.
func (s *SessionService) Prune() int {
	store, ok := s.repo.(expiringRepository)
	if !ok {
		return 0
	}
	return store.Prune()
}

// lock serialises work on one session. The entry is dropped once the last
// holder releases it, so the map only holds sessions with work in flight.
func (s *SessionService) lock(id string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}

func (s *SessionService) heldLocks() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}
