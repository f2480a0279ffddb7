package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"planora/internal/repository"
	"planora/internal/store"
)

func authFixture(t *testing.T) (AuthService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	mem := repository.NewMemory()
	return NewAuthService(mem.Organizers, kv, zap.NewNop()), mr
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := authFixture(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterRequest{
		Email:    "Planner@Example.com",
		Name:     "Pat Planner",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "planner@example.com", session.Email)

	// Duplicate email is rejected regardless of case.
	_, err = svc.Register(ctx, RegisterRequest{
		Email:    "planner@example.com",
		Password: "another-pass",
	})
	assert.Error(t, err)

	login, err := svc.Login(ctx, LoginRequest{Email: "planner@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, session.OrganizerID, login.OrganizerID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := authFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "password2"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@b.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := authFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "not-an-email", Password: "password1"})
	assert.Error(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "short"})
	assert.Error(t, err)
}

func TestAuthenticateSessionLifecycle(t *testing.T) {
	svc, mr := authFixture(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	org, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.OrganizerID, org.ID)

	require.NoError(t, svc.Logout(ctx, session.Token))
	_, err = svc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Sessions expire on their own.
	again, err := svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)
	mr.FastForward(sessionTTL + time.Minute)
	_, err = svc.Authenticate(ctx, again.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestHashPasswordSaltedByEmail(t *testing.T) {
	assert.NotEqual(t,
		HashPassword("a@b.com", "password1"),
		HashPassword("c@d.com", "password1"))
	assert.Equal(t,
		HashPassword("A@B.com", "password1"),
		HashPassword("a@b.com", "password1"))
}
