package storage

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryItem struct {
	value     string
	expiresAt time.Time
}

// MemoryStore guarda los valores en proceso. ttl <= 0 significa sin expiracion.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]memoryItem
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
		items: make(map[string]memoryItem),
	}
}

func (s *MemoryStore) Get(_ context.Context, clientID, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memoryKey(clientID, key)
	item, ok := s.items[k]
	if !ok {
		return "", ErrNotFound
	}
	if !item.expiresAt.IsZero() && s.now().After(item.expiresAt) {
		delete(s.items, k)
		return "", ErrNotFound
	}
	return item.value, nil
}

func (s *MemoryStore) Set(_ context.Context, clientID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := memoryItem{value: value}
	if s.ttl > 0 {
		item.expiresAt = s.now().Add(s.ttl)
	}
	s.items[memoryKey(clientID, key)] = item
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, clientID string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.items, memoryKey(clientID, key))
	}
	return nil
}

func memoryKey(clientID, key string) string {
	return strings.TrimSpace(clientID) + "|" + key
}
