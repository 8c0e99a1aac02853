package server

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterWindow(t *testing.T) {
	l := NewMemoryLimiter()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("k", 2, time.Minute))
	assert.True(t, l.Allow("k", 2, time.Minute))
	assert.False(t, l.Allow("k", 2, time.Minute))
	assert.True(t, l.Allow("other", 2, time.Minute))

	now = now.Add(time.Minute + time.Second)
	assert.True(t, l.Allow("k", 2, time.Minute), "new window")

	assert.True(t, l.Allow("", 1, time.Minute))
	assert.True(t, l.Allow("k", 0, time.Minute))
}

func TestMemoryLimiterEvictsExpiredBuckets(t *testing.T) {
	l := NewMemoryLimiter()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		l.Allow(uuid.NewString(), 5, 10*time.Second)
	}
	assert.Len(t, l.buckets, 100)

	now = now.Add(30 * time.Second)
	assert.True(t, l.Allow("ip:10.0.0.1", 5, 10*time.Second))
	assert.Len(t, l.buckets, 101, "sweep runs at most once a minute")

	now = now.Add(memorySweepInterval)
	assert.True(t, l.Allow("ip:10.0.0.2", 5, 10*time.Second))
	assert.Len(t, l.buckets, 1)
	assert.Contains(t, l.buckets, "ip:10.0.0.2")
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	var nilLimiter *RedisLimiter
	assert.True(t, nilLimiter.Allow("k", 1, time.Minute))
	assert.Nil(t, NewRedisLimiter(nil))

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLimiter(client)
	require.NotNil(t, l)
	assert.True(t, l.Allow("k", 1, time.Minute))
	assert.True(t, l.Allow("k", 1, time.Minute))
}

func TestRateLimitKey(t *testing.T) {
	key := userOrIPKey("apply")

	req := httptest.NewRequest("POST", "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "apply:ip:10.0.0.7", key(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "apply:ip:203.0.113.9", key(req))

	id := uuid.New()
	req = req.WithContext(context.WithValue(req.Context(), contextUserIDKey, id))
	assert.Equal(t, "apply:user:"+id.String(), key(req))
}
