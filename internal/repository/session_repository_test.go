package repository

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	appErrors "github.com/noah-isme/banco-questoes-web/pkg/errors"
)

func TestMemorySessionRepositoryRoundTrip(t *testing.T) {
	repo := NewMemorySessionRepository()
	subject := 5
	state := &models.SessionState{ID: "s-1", Filters: models.FilterSnapshot{SubjectID: &subject, TopicIDs: []int{10, 11}}}

	require.NoError(t, repo.Save(context.Background(), state, time.Hour))

	got, err := repo.Get(context.Background(), "s-1")
	require.NoError(t, err)
	require.NotNil(t, got.Filters.SubjectID)
	assert.Equal(t, 5, *got.Filters.SubjectID)
	assert.Equal(t, []int{10, 11}, got.Filters.TopicIDs)

	got.Filters.TopicIDs[0] = 99
	again, err := repo.Get(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, 10, again.Filters.TopicIDs[0])
}

func TestMemorySessionRepositoryExpiry(t *testing.T) {
	repo := NewMemorySessionRepository()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Save(context.Background(), &models.SessionState{ID: "s-2"}, time.Minute))
	now = now.Add(2 * time.Minute)

	_, err := repo.Get(context.Background(), "s-2")
	assert.ErrorIs(t, err, appErrors.ErrSessionMissing)
}

func TestMemorySessionRepositoryPruneDropsExpiredEntries(t *testing.T) {
	repo := NewMemorySessionRepository()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		require.NoError(t, repo.Save(ctx, &models.SessionState{ID: "short-" + strconv.Itoa(i)}, time.Millisecond))
	}
	require.NoError(t, repo.Save(ctx, &models.SessionState{ID: "kept"}, time.Hour))
	require.NoError(t, repo.Save(ctx, &models.SessionState{ID: "forever"}, 0))
	now = now.Add(10 * time.Millisecond)

	assert.Equal(t, 1000, repo.Prune())
	assert.Equal(t, 2, repo.Len())
	_, err := repo.Get(ctx, "kept")
	assert.NoError(t, err)
	assert.Equal(t, 0, repo.Prune())
}

func TestMemorySessionRepositoryDelete(t *testing.T) {
	repo := NewMemorySessionRepository()
	require.NoError(t, repo.Save(context.Background(), &models.SessionState{ID: "s-3"}, 0))
	require.NoError(t, repo.Delete(context.Background(), "s-3"))

	_, err := repo.Get(context.Background(), "s-3")
	assert.ErrorIs(t, err, appErrors.ErrSessionMissing)
}

func TestRedisSessionRepositoryWithoutClient(t *testing.T) {
	repo := NewRedisSessionRepository(nil, nil)

	_, err := repo.Get(context.Background(), "any")
	assert.ErrorIs(t, err, appErrors.ErrSessionMissing)
	assert.NoError(t, repo.Save(context.Background(), &models.SessionState{ID: "any"}, time.Minute))
	assert.Equal(t, "bq:session:any", SessionKey("any"))
}

func liveRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	return client
}

func TestRedisSessionRepositoryLifecycle(t *testing.T) {
	client := liveRedis(t)
	repo := NewRedisSessionRepository(client, nil)
	t.Cleanup(func() { _ = repo.Close() })
	ctx := context.Background()
	id := "test-" + uuid.NewString()

	_, err := repo.Get(ctx, id)
	assert.ErrorIs(t, err, appErrors.ErrSessionMissing)

	year := 2021
	require.NoError(t, repo.Save(ctx, &models.SessionState{ID: id, Filters: models.FilterSnapshot{Year: &year, TopicIDs: []int{3}}}, time.Minute))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.Filters.Year)
	assert.Equal(t, 2021, *got.Filters.Year)
	assert.Equal(t, []int{3}, got.Filters.TopicIDs)

	ttl, err := client.TTL(ctx, SessionKey(id)).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, appErrors.ErrSessionMissing)
}

func TestRedisSessionRepositoryCorruptPayload(t *testing.T) {
	client := liveRedis(t)
	repo := NewRedisSessionRepository(client, nil)
	t.Cleanup(func() { _ = repo.Close() })
	ctx := context.Background()
	id := "test-" + uuid.NewString()

	require.NoError(t, client.Set(ctx, SessionKey(id), "{not json", time.Minute).Err())
	t.Cleanup(func() { _ = client.Del(context.Background(), SessionKey(id)).Err() })

	_, err := repo.Get(ctx, id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrSessionMissing)
}
