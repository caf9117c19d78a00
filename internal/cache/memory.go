package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value    []byte
	storedAt time.Time
}

// MemoryCache is an in-process Cache. Expired entries are dropped on read.
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu         sync.RWMutex
	entries    map[string]entry
	generation uint64
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now, entries: map[string]entry{}}
}

// WithClock replaces the time source, for tests.
func (m *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	m.now = now
	return m
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	if m.ttl > 0 && m.now().Sub(e.storedAt) >= m.ttl {
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, ErrMiss
	}
	return e.value, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.entries[key] = entry{value: value, storedAt: m.now()}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Generation(_ context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation, nil
}

func (m *MemoryCache) SetIfGeneration(_ context.Context, key string, value []byte, generation uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation {
		return nil
	}
	m.entries[key] = entry{value: value, storedAt: m.now()}
	return nil
}

func (m *MemoryCache) Invalidate(_ context.Context) error {
	m.mu.Lock()
	m.entries = map[string]entry{}
	m.generation++
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
