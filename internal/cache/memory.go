package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory 进程内 LRU 缓存, 每个条目带过期时间
type Memory struct {
	lru *lru.Cache[string, entry]
	now func() time.Time
}

// NewMemory creates an LRU page cache holding at most size pages.
func NewMemory(size int) (*Memory, error) {
	l, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Memory{lru: l, now: time.Now}, nil
}

// WithClock replaces the time source used for expiry.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(val.expiresAt) {
		m.lru.Remove(key)
		return nil, false, nil
	}
	return val.data, true, nil
}

func (m *Memory) Set(_ context.Context, key string, page []byte, ttl time.Duration) error {
	data := make([]byte, len(page))
	copy(data, page)
	m.lru.Add(key, entry{
		data:      data,
		expiresAt: m.now().Add(ttl),
	})
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.lru.Purge()
	return nil
}
