package storage

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

type memoryStore struct {
	cache *cache.Cache
}

// NewMemory returns an in-process store; entries are lost on restart.
func NewMemory(cleanupInterval time.Duration) Store {
	return &memoryStore{cache: cache.New(cache.NoExpiration, cleanupInterval)}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return "", ErrNotFound
	}
	return v.(string), nil
}

func (m *memoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	m.cache.Set(key, value, ttl)
	return nil
}

func (m *memoryStore) Remove(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

func (m *memoryStore) Ping(context.Context) error {
	return nil
}
