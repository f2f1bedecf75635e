package cache

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/puzpuzpuz/xsync"
	"github.com/redis/go-redis/v9"
)

const (
	// PagePrefix namespaces cached page responses.
	PagePrefix = "page:"
	// SessionPrefix namespaces session bookkeeping such as revoked tokens.
	SessionPrefix = "session:"

	storeTimeout = 2 * time.Second
	scanCount    = 100
)

var (
	_ fiber.Storage = (*RedisStore)(nil)
	_ fiber.Storage = (*MemoryStore)(nil)
)

// RedisStore is a fiber.Storage over a shared Redis client. All keys are
// namespaced by prefix so Reset only removes this store's entries.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a store writing keys under prefix. The client is
// owned by the caller; Close does not close it.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *RedisStore) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+key, val, exp).Err()
}

func (s *RedisStore) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Reset deletes every key under the store prefix.
func (s *RedisStore) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*storeTimeout)
	defer cancel()

	iter := s.client.Scan(ctx, 0, s.prefix+"*", scanCount).Iterator()
	batch := make([]string, 0, scanCount)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanCount {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return s.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (s *RedisStore) Close() error { return nil }

type memoryEntry struct {
	val     []byte
	expires time.Time
}

// MemoryStore is an in-process fiber.Storage, used when Redis is not
// configured or unreachable.
type MemoryStore struct {
	entries *xsync.MapOf[string, memoryEntry]
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: xsync.NewMapOf[memoryEntry](), now: time.Now}
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	e, ok := s.entries.Load(key)
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		s.entries.Delete(key)
		return nil, nil
	}
	return e.val, nil
}

func (s *MemoryStore) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	e := memoryEntry{val: append([]byte(nil), val...)}
	if exp > 0 {
		e.expires = s.now().Add(exp)
	}
	s.entries.Store(key, e)
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.entries.Delete(key)
	return nil
}

func (s *MemoryStore) Reset() error {
	s.entries.Range(func(key string, _ memoryEntry) bool {
		s.entries.Delete(key)
		return true
	})
	return nil
}

// Len reports the number of stored entries, expired ones included until read.
func (s *MemoryStore) Len() int {
	return s.entries.Size()
}

func (s *MemoryStore) Close() error { return nil }
