package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"planora/internal/repository"
	"planora/internal/service"
	"planora/internal/store"
)

func newAuthFixture(t *testing.T) service.AuthService {
	t.Helper()
	mr := miniredis.RunT(t)
	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	mem := repository.NewMemory()
	return service.NewAuthService(mem.Organizers, kv, zap.NewNop())
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	auth := newAuthFixture(t)

	handler := requireAuth(auth)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/api/v1/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeResult(t, rec).Message)
}

func TestRequireAuthPassesOrganizerThrough(t *testing.T) {
	auth := newAuthFixture(t)
	session, err := auth.Register(context.Background(), service.RegisterRequest{
		Email: "planner@example.com", Name: "Planner", Password: "correct-horse",
	})
	require.NoError(t, err)

	var sawEmail string
	handler := requireAuth(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawEmail = organizerFrom(r.Context()).Email
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "planner@example.com", sawEmail)
}

func TestRateLimitReturns429WhenExhausted(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	t.Cleanup(limiter.Close)

	handler := rateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/rsvp/api/v1/tok", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitIsPerClient(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	t.Cleanup(limiter.Close)

	handler := rateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "203.0.113.7:51000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "203.0.113.8:51000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	t.Cleanup(limiter.Close)

	require.True(t, limiter.allow("203.0.113.7"))
	require.True(t, limiter.allow("203.0.113.8"))

	limiter.mu.Lock()
	limiter.buckets["203.0.113.7"].lastSeen = time.Now().Add(-time.Hour)
	limiter.mu.Unlock()

	limiter.evictIdle(time.Now().Add(-10 * time.Minute))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.buckets, "203.0.113.7")
	assert.Contains(t, limiter.buckets, "203.0.113.8")
}

func TestAuthHandlerLogin(t *testing.T) {
	auth := newAuthFixture(t)
	_, err := auth.Register(context.Background(), service.RegisterRequest{
		Email: "planner@example.com", Name: "Planner", Password: "correct-horse",
	})
	require.NoError(t, err)

	handler := NewAuthHandler(auth, zap.NewNop())

	body, _ := json.Marshal(service.LoginRequest{Email: "planner@example.com", Password: "correct-horse"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out Result[service.SessionInfo]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.Result.Token)
	assert.Equal(t, "planner@example.com", out.Result.Email)
}

func TestAuthHandlerLoginBadPassword(t *testing.T) {
	auth := newAuthFixture(t)
	_, err := auth.Register(context.Background(), service.RegisterRequest{
		Email: "planner@example.com", Name: "Planner", Password: "correct-horse",
	})
	require.NoError(t, err)

	handler := NewAuthHandler(auth, zap.NewNop())

	body, _ := json.Marshal(service.LoginRequest{Email: "planner@example.com", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decodeResult(t, rec).Message)
}
