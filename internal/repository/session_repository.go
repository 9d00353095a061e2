package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	appErrors "github.com/noah-isme/banco-questoes-web/pkg/errors"
)

const sessionKeyPrefix = "bq:session:"

// SessionKey returns the storage key for a session id.
func SessionKey(id string) string {
	return sessionKeyPrefix + id
}

// RedisSessionRepository persists session filter state in Redis as JSON.
type RedisSessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisSessionRepository constructs a Redis-backed session repository.
func NewRedisSessionRepository(client *redis.Client, logger *zap.Logger) *RedisSessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSessionRepository{client: client, logger: logger}
}

// Get loads a session. A missing key yields ErrSessionMissing.
func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*models.SessionState, error) {
	if r.client == nil {
		return nil, appErrors.ErrSessionMissing
	}

	key := SessionKey(id)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrSessionMissing
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var state models.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", key, err)
	}
	return &state, nil
}

// Save stores the session with the given TTL, refreshing its expiry.
func (r *RedisSessionRepository) Save(ctx context.Context, state *models.SessionState, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	key := SessionKey(state.ID)
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a session.
func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	if r.client == nil {
		return nil
	}
	key := SessionKey(id)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *RedisSessionRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemorySessionRepository keeps sessions in process memory. Entries are
// stored as JSON so readers never share mutable state with the store.
type MemorySessionRepository struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemorySessionRepository constructs an in-memory session repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{entries: make(map[string]memoryEntry), now: time.Now}
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Get loads a session. Expired or missing entries yield ErrSessionMissing.
func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*models.SessionState, error) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok && entry.expired(r.now()) {
		delete(r.entries, id)
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		return nil, appErrors.ErrSessionMissing
	}

	var state models.SessionState
	if err := json.Unmarshal(entry.payload, &state); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &state, nil
}

// Save stores the session; a non-positive ttl keeps it until deleted.
func (r *MemorySessionRepository) Save(ctx context.Context, state *models.SessionState, ttl time.Duration) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", state.ID, err)
	}
	entry := memoryEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}
	r.mu.Lock()
	r.entries[state.ID] = entry
	r.mu.Unlock()
	return nil
}

// Delete removes a session.
func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
	return nil
}

// Prune drops every expired entry and returns how many were removed.
func (r *MemorySessionRepository) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, entry := range r.entries {
		if entry.expired(now) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports how many entries are held, expired ones included.
func (r *MemorySessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
