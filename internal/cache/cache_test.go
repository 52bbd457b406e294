package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m, err := NewMemory(10)
	require.NoError(t, err)
	m.WithClock(func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "index_page", []byte("snapshot"), 20*time.Second))

	now = now.Add(19 * time.Second)
	data, ok, err := m.Get(ctx, "index_page")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "snapshot", string(data))

	now = now.Add(time.Second)
	_, ok, err = m.Get(ctx, "index_page")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoresCopy(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemory(10)
	require.NoError(t, err)

	page := []byte("original")
	require.NoError(t, m.Set(ctx, "k", page, time.Minute))
	copy(page, "mutated!")

	data, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "original", string(data))
}

func TestMemoryClear(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemory(10)
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, m.Clear(ctx))

	_, ok, _ := m.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "b")
	assert.False(t, ok)
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemory(2)
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, m.Set(ctx, "c", []byte("3"), time.Minute))

	_, ok, _ := m.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "c")
	assert.True(t, ok)
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	r, err := NewRedis(ctx, mr.Addr())
	require.NoError(t, err)
	defer r.Close()

	_, ok, err := r.Get(ctx, "index_page")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "index_page", []byte("snapshot"), 20*time.Second))
	data, ok, err := r.Get(ctx, "index_page")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "snapshot", string(data))

	mr.FastForward(21 * time.Second)
	_, ok, err = r.Get(ctx, "index_page")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	r, err := NewRedis(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, mr.Set("unrelated", "keep"))
	require.NoError(t, r.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, r.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, r.Clear(ctx))

	_, ok, _ := r.Get(ctx, "a")
	assert.False(t, ok)
	assert.True(t, mr.Exists("unrelated"))
}

func TestNewRedisUnreachable(t *testing.T) {
	_, err := NewRedis(context.Background(), "127.0.0.1:1")
	assert.Error(t, err)
}

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m, err := NewMemory(10)
	require.NoError(t, err)
	m.WithClock(func() time.Time { return now })

	builds := 0
	build := func(name string) func(context.Context) ([]byte, error) {
		return func(context.Context) ([]byte, error) {
			builds++
			return []byte(fmt.Sprintf("build %d of %s", builds, name)), nil
		}
	}
	s := NewSnapshots(m, "index_page", 20*time.Second, zap.NewNop())

	first, err := s.Get(ctx, "/", build("/"))
	require.NoError(t, err)
	assert.Equal(t, "build 1 of /", string(first))

	second, err := s.Get(ctx, "/", build("/"))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 1, builds)

	// each page number is its own snapshot
	paged, err := s.Get(ctx, "/?page=2", build("/?page=2"))
	require.NoError(t, err)
	assert.Equal(t, "build 2 of /?page=2", string(paged))

	_, ok, err := m.Get(ctx, "index_page:/")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(21 * time.Second)
	expired, err := s.Get(ctx, "/", build("/"))
	require.NoError(t, err)
	assert.Equal(t, "build 3 of /", string(expired))

	require.NoError(t, m.Clear(ctx))
	cleared, err := s.Get(ctx, "/", build("/"))
	require.NoError(t, err)
	assert.Equal(t, "build 4 of /", string(cleared))
}

func TestSnapshotsSkipFailedBuilds(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemory(10)
	require.NoError(t, err)
	s := NewSnapshots(m, "index_page", time.Minute, zap.NewNop())

	builds := 0
	failing := func(context.Context) ([]byte, error) {
		builds++
		return nil, errors.New("boom")
	}

	_, err = s.Get(ctx, "/", failing)
	assert.Error(t, err)
	_, err = s.Get(ctx, "/", failing)
	assert.Error(t, err)
	assert.Equal(t, 2, builds)
}

func TestSnapshotsSurviveCacheOutage(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	r, err := NewRedis(context.Background(), mr.Addr())
	require.NoError(t, err)
	defer r.Close()
	mr.Close()

	s := NewSnapshots(r, "index_page", time.Minute, zap.NewNop())
	data, err := s.Get(context.Background(), "/", func(context.Context) ([]byte, error) {
		return []byte("fresh"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))
}
