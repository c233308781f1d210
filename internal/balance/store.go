package balance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// PendingStore holds edit sessions between the request and the confirmation.
// Take removes and returns a session in one step; of several concurrent Takes
// of the same token exactly one succeeds.
type PendingStore interface {
	Save(ctx context.Context, e *Editor, ttl time.Duration) error
	Get(ctx context.Context, token string) (*Editor, error)
	Take(ctx context.Context, token string) (*Editor, error)
	Delete(ctx context.Context, token string) error
}

type memoryEntry struct {
	editor    Editor
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Expired entries are invisible to Get
// and removed by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, e *Editor, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.Token] = memoryEntry{editor: *e, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (*Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, ErrEditNotFound
	}
	e := entry.editor
	return &e, nil
}

func (s *MemoryStore) Take(_ context.Context, token string) (*Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, ErrEditNotFound
	}
	delete(s.entries, token)
	e := entry.editor
	return &e, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for token, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

// RedisStore keeps sessions in Redis; expiry is Redis' own TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "balance-edit:"}
}

func (s *RedisStore) key(token string) string {
	return s.prefix + token
}

func (s *RedisStore) Save(ctx context.Context, e *Editor, ttl time.Duration) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode balance edit: %w", err)
	}
	if err := s.client.Set(ctx, s.key(e.Token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store balance edit: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Editor, error) {
	return decodeEditor(s.client.Get(ctx, s.key(token)).Bytes())
}

// Take uses GETDEL, so the claim is atomic on the server.
func (s *RedisStore) Take(ctx context.Context, token string) (*Editor, error) {
	return decodeEditor(s.client.GetDel(ctx, s.key(token)).Bytes())
}

func decodeEditor(payload []byte, err error) (*Editor, error) {
	if errors.Is(err, redis.Nil) {
		return nil, ErrEditNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load balance edit: %w", err)
	}

	var e Editor
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("decode balance edit: %w", err)
	}
	return &e, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("delete balance edit: %w", err)
	}
	return nil
}
