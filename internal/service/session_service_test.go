package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	"github.com/noah-isme/banco-questoes-web/internal/repository"
)

type brokenSessionRepo struct{}

func (brokenSessionRepo) Get(context.Context, string) (*models.SessionState, error) {
	return nil, errors.New("redis down")
}

func (brokenSessionRepo) Save(context.Context, *models.SessionState, time.Duration) error {
	return errors.New("redis down")
}

func (brokenSessionRepo) Delete(context.Context, string) error {
	return errors.New("redis down")
}

func TestSessionServiceLoadMissingIsFresh(t *testing.T) {
	svc := NewSessionService(repository.NewMemorySessionRepository(), time.Hour, nil, zap.NewNop())

	state, err := svc.Load(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", state.ID)
	assert.True(t, state.Filters.Empty())
	assert.Nil(t, state.Reference)
}

func TestSessionServiceUpdatePersists(t *testing.T) {
	svc := NewSessionService(repository.NewMemorySessionRepository(), time.Hour, NewMetricsService(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Update(ctx, "abc", func(s *models.SessionState) error {
		s.Filters.TopicIDs = append(s.Filters.TopicIDs, 4)
		return nil
	})
	require.NoError(t, err)

	state, err := svc.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []int{4}, state.Filters.TopicIDs)
	assert.False(t, state.UpdatedAt.IsZero())
}

func TestSessionServiceUpdateAbortsOnError(t *testing.T) {
	svc := NewSessionService(repository.NewMemorySessionRepository(), time.Hour, nil, nil)
	ctx := context.Background()
	boom := errors.New("rejected")

	_, err := svc.Update(ctx, "abc", func(s *models.SessionState) error {
		s.Filters.TopicIDs = []int{1}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	state, err := svc.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, state.Filters.TopicIDs)
}

func TestSessionServiceConcurrentUpdatesAreSerialised(t *testing.T) {
	svc := NewSessionService(repository.NewMemorySessionRepository(), time.Hour, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, _ = svc.Update(ctx, "abc", func(s *models.SessionState) error {
				s.Filters.TopicIDs = append(s.Filters.TopicIDs, id)
				return nil
			})
		}(i)
	}
	wg.Wait()

	state, err := svc.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Len(t, state.Filters.TopicIDs, 20)
	assert.Zero(t, svc.heldLocks())
}

func TestSessionServiceLocksReleasedAfterUpdate(t *testing.T) {
	svc := NewSessionService(repository.NewMemorySessionRepository(), time.Hour, nil, nil)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		_, err := svc.Update(ctx, "s-"+strconv.Itoa(i), func(*models.SessionState) error { return nil })
		require.NoError(t, err)
	}
	_, err := svc.Update(ctx, "failing", func(*models.SessionState) error { return errors.New("rejected") })
	require.Error(t, err)

	assert.Zero(t, svc.heldLocks())
}

func TestSessionServicePruneSweepsMemoryStore(t *testing.T) {
	repo := repository.NewMemorySessionRepository()
	svc := NewSessionService(repo, time.Millisecond, nil, nil)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := svc.Update(ctx, "s-"+strconv.Itoa(i), func(*models.SessionState) error { return nil })
		require.NoError(t, err)
	}
	require.Equal(t, 10, repo.Len())

	require.Eventually(t, func() bool {
		svc.Prune()
		return repo.Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSessionServicePruneWithoutExpiringStore(t *testing.T) {
	svc := NewSessionService(brokenSessionRepo{}, time.Hour, nil, nil)
	assert.Zero(t, svc.Prune())
}

func TestSessionServiceReset(t *testing.T) {
	svc := NewSessionService(repository.NewMemorySessionRepository(), time.Hour, nil, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, "abc", func(s *models.SessionState) error {
		s.Filters.Year = ptr(2020)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, svc.Reset(ctx, "abc"))

	state, err := svc.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, state.Filters.Year)
}

func TestSessionServiceStoreErrors(t *testing.T) {
	svc := NewSessionService(brokenSessionRepo{}, time.Hour, nil, nil)
	ctx := context.Background()

	_, err := svc.Load(ctx, "abc")
	assert.Error(t, err)
	assert.Error(t, svc.Save(ctx, &models.SessionState{ID: "abc"}))
	assert.Error(t, svc.Reset(ctx, "abc"))
}
