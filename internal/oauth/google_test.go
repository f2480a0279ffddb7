package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"planora/internal/store"
)

func managerFixture(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	cfg := GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://planora.example/api/v1/oauth/google/callback",
	}
	m := NewManager(cfg, kv, resty.New(), zap.NewNop())
	return m, mr
}

func TestAuthURLStoresState(t *testing.T) {
	m, mr := managerFixture(t)

	authURL, err := m.AuthURL(context.Background(), 42)
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "offline", q.Get("access_type"))

	state := q.Get("state")
	require.NotEmpty(t, state)
	stored, err := mr.Get(statePrefix + state)
	require.NoError(t, err)
	assert.Equal(t, "42", stored)

	mr.FastForward(stateTTL + time.Second)
	assert.False(t, mr.Exists(statePrefix+state))
}

func TestAuthURLUnconfigured(t *testing.T) {
	m, _ := managerFixture(t)
	m.cfg = GoogleConfig{}

	_, err := m.AuthURL(context.Background(), 42)
	assert.Error(t, err)
}

func TestExchangeHappyPath(t *testing.T) {
	m, mr := managerFixture(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "the-code", r.FormValue("code"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"expires_in":    3599,
			"token_type":    "Bearer",
		})
	}))
	defer srv.Close()
	m.tokenURL = srv.URL

	require.NoError(t, mr.Set(statePrefix+"state-1", "42"))

	eventID, refresh, err := m.Exchange(context.Background(), "state-1", "the-code")
	require.NoError(t, err)
	assert.Equal(t, int64(42), eventID)
	assert.Equal(t, "rt-1", refresh)

	// State is single use.
	assert.False(t, mr.Exists(statePrefix + "state-1"))
	_, _, err = m.Exchange(context.Background(), "state-1", "the-code")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestExchangeUnknownState(t *testing.T) {
	m, _ := managerFixture(t)

	_, _, err := m.Exchange(context.Background(), "never-issued", "code")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestExchangeProviderRejection(t *testing.T) {
	m, mr := managerFixture(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "Code was already redeemed.",
		})
	}))
	defer srv.Close()
	m.tokenURL = srv.URL

	require.NoError(t, mr.Set(statePrefix+"state-2", "42"))

	_, _, err := m.Exchange(context.Background(), "state-2", "stale-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestAccessTokenRefresh(t *testing.T) {
	m, _ := managerFixture(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "rt-1", r.FormValue("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-2",
			"expires_in":   3599,
			"token_type":   "Bearer",
		})
	}))
	defer srv.Close()
	m.tokenURL = srv.URL

	token, err := m.AccessToken(context.Background(), "rt-1")
	require.NoError(t, err)
	assert.Equal(t, "at-2", token)
}
