package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/GTDGit/stockcentral/internal/cache"
	"github.com/GTDGit/stockcentral/internal/config"
	"github.com/GTDGit/stockcentral/internal/utils"
)

// Data is the server-side state of an admin browser session.
type Data struct {
	ID        string    `json:"id"`
	CSRFToken string    `json:"csrfToken"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists sessions and their one-time notices. Load returns
// utils.ErrSessionNotFound for unknown or expired ids.
type Store interface {
	Load(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, data *Data, ttl time.Duration) error
	Destroy(ctx context.Context, id string) error
	AddNotice(ctx context.Context, id string, notice Notice, ttl time.Duration) error
	PopNotices(ctx context.Context, id string) ([]Notice, error)
}

// Notice is a flash message shown once on the next render.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// RedisStore keeps sessions in Redis.
// Keys: session:{id} holds the JSON Data, session:{id}:notices a list of JSON notices.
type RedisStore struct {
	redis *cache.RedisClient
}

// NewStore returns the backend named by cfg.Store.
func NewStore(cfg config.SessionConfig, redis *cache.RedisClient) Store {
	if cfg.Store == config.SessionStoreMemory {
		return NewMemoryStore(cfg.MemorySize, cfg.TTL)
	}
	return NewRedisStore(redis)
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(redis *cache.RedisClient) *RedisStore {
	return &RedisStore{redis: redis}
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *RedisStore) noticeKey(id string) string {
	return fmt.Sprintf("session:%s:notices", id)
}

// Load retrieves a session by id.
func (s *RedisStore) Load(ctx context.Context, id string) (*Data, error) {
	raw, err := s.redis.Get(ctx, s.key(id))
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, utils.ErrSessionNotFound
		}
		return nil, err
	}

	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &data, nil
}

// Save stores the session and resets its TTL.
func (s *RedisStore) Save(ctx context.Context, data *Data, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(data.ID), string(raw), ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Destroy removes the session and any pending notices.
func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	return s.redis.Delete(ctx, s.key(id), s.noticeKey(id))
}

// AddNotice queues a notice for the next render.
func (s *RedisStore) AddNotice(ctx context.Context, id string, notice Notice, ttl time.Duration) error {
	raw, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal notice: %w", err)
	}
	return s.redis.PushList(ctx, s.noticeKey(id), ttl, string(raw))
}

// PopNotices returns queued notices in insertion order and clears them.
func (s *RedisStore) PopNotices(ctx context.Context, id string) ([]Notice, error) {
	raws, err := s.redis.DrainList(ctx, s.noticeKey(id))
	if err != nil {
		return nil, err
	}
	notices := make([]Notice, 0, len(raws))
	for _, raw := range raws {
		var n Notice
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			continue
		}
		notices = append(notices, n)
	}
	return notices, nil
}

// MemoryStore is an in-process Store selected with SESSION_STORE=memory for
// single-instance deployments. Entries expire after the ttl given to NewMemoryStore.
type MemoryStore struct {
	sessions *expirable.LRU[string, Data]

	mu      sync.Mutex // guards read-modify-write of notice queues
	notices *expirable.LRU[string, []Notice]
}

// NewMemoryStore creates a MemoryStore holding at most size sessions.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: expirable.NewLRU[string, Data](size, nil, ttl),
		notices:  expirable.NewLRU[string, []Notice](size, nil, ttl),
	}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Data, error) {
	data, ok := s.sessions.Get(id)
	if !ok {
		return nil, utils.ErrSessionNotFound
	}
	return &data, nil
}

func (s *MemoryStore) Save(ctx context.Context, data *Data, ttl time.Duration) error {
	s.sessions.Add(data.ID, *data)
	return nil
}

func (s *MemoryStore) Destroy(ctx context.Context, id string) error {
	s.sessions.Remove(id)
	s.mu.Lock()
	s.notices.Remove(id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) AddNotice(ctx context.Context, id string, notice Notice, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	queued, _ := s.notices.Peek(id)
	next := make([]Notice, len(queued), len(queued)+1)
	copy(next, queued)
	s.notices.Add(id, append(next, notice))
	return nil
}

func (s *MemoryStore) PopNotices(ctx context.Context, id string) ([]Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queued, ok := s.notices.Peek(id)
	if !ok {
		return nil, nil
	}
	s.notices.Remove(id)
	return queued, nil
}
