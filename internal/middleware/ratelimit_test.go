package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLimiter struct {
	allow bool
	err   error
}

func (s stubLimiter) Allow(context.Context, string) (bool, error) {
	return s.allow, s.err
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name       string
		limiter    Limiter
		wantStatus int
	}{
		{"allowed", stubLimiter{allow: true}, http.StatusOK},
		{"over budget", stubLimiter{allow: false}, http.StatusTooManyRequests},
		{"limiter failure fails open", stubLimiter{err: errors.New("redis down")}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RateLimit(tt.limiter)(http.HandlerFunc(okHandler))
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/veriff/session", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusTooManyRequests {
				assert.Equal(t, "RATE_LIMITED", decodeError(t, rec).Code)
			}
		})
	}
}

func TestMemoryLimiter_Window(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "10.0.0.1")
	assert.False(t, ok, "third call within the window is rejected")

	ok, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok, "other clients have their own budget")

	now = now.Add(time.Minute + time.Second)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	assert.True(t, ok, "budget resets after the window")
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	l := NewMemoryLimiter(50, time.Minute)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := l.Allow(context.Background(), "same-client")
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	assert.Equal(t, "192.0.2.10", clientKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientKey(req))
}

// fakeScripter counts INCR calls per key the way the Lua script would.
type fakeScripter struct {
	redis.Scripter
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (f *fakeScripter) EvalSha(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[keys[0]]++
	cmd.SetVal(f.counts[keys[0]])
	return cmd
}

func TestRedisLimiter(t *testing.T) {
	rdb := &fakeScripter{counts: map[string]int64{}}
	l := NewRedisLimiter(rdb, 2, time.Minute, "")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, rdb.counts, "kyc:rl:10.0.0.1")
}

func TestRedisLimiter_Error(t *testing.T) {
	l := NewRedisLimiter(&fakeScripter{err: errors.New("connection refused")}, 2, time.Minute, "test")

	_, err := l.Allow(context.Background(), "k")

	assert.ErrorContains(t, err, "connection refused")
}
