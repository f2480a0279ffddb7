package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"planora/internal/domain"
	"planora/internal/repository"
	"planora/internal/store"
)

const (
	sessionPrefix = "session:"
	sessionTTL    = 24 * time.Hour
)

var ErrUnauthorized = errors.New("unauthorized")

// AuthService organizer registration and session handling. Sessions are
// opaque tokens in the shared KV so any instance can validate them.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*SessionInfo, error)
	Login(ctx context.Context, req LoginRequest) (*SessionInfo, error)
	Logout(ctx context.Context, token string) error

	// Authenticate resolves a bearer token to the organizer it belongs
	// to. ErrUnauthorized for unknown or expired tokens.
	Authenticate(ctx context.Context, token string) (*domain.Organizer, error)
}

type authService struct {
	organizers repository.OrganizersRepo
	kv         store.KV
	logger     *zap.Logger
}

func NewAuthService(organizers repository.OrganizersRepo, kv store.KV, logger *zap.Logger) AuthService {
	return &authService{organizers: organizers, kv: kv, logger: logger}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionInfo returned after a successful login or registration.
type SessionInfo struct {
	Token       string `json:"token"`
	OrganizerID int64  `json:"organizer_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
}

// HashPassword derives the stored credential hash. Salting with the
// lowercased email keeps equal passwords distinct across accounts.
func HashPassword(email, password string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email)) + ":" + password))
	return hex.EncodeToString(sum[:])
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*SessionInfo, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	if _, err := s.organizers.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("an account with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	org := &domain.Organizer{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: HashPassword(email, req.Password),
	}
	id, err := s.organizers.Create(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("failed to create organizer: %w", err)
	}
	org.ID = id

	s.logger.Info("organizer registered", zap.Int64("organizer_id", id), zap.String("email", email))
	return s.openSession(ctx, org)
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*SessionInfo, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrUnauthorized
	}

	org, err := s.organizers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("login failed: unknown email", zap.String("email", email))
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load organizer: %w", err)
	}

	if org.PasswordHash != HashPassword(email, req.Password) {
		s.logger.Warn("login failed: wrong password",
			zap.Int64("organizer_id", org.ID), zap.String("email", email))
		return nil, ErrUnauthorized
	}

	s.logger.Info("organizer login", zap.Int64("organizer_id", org.ID), zap.String("email", email))
	return s.openSession(ctx, org)
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.kv.Delete(ctx, sessionPrefix+token)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*domain.Organizer, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	raw, err := s.kv.Get(ctx, sessionPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	organizerID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, ErrUnauthorized
	}
	org, err := s.organizers.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load organizer: %w", err)
	}
	return org, nil
}

func (s *authService) openSession(ctx context.Context, org *domain.Organizer) (*SessionInfo, error) {
	token := uuid.NewString()
	if err := s.kv.Set(ctx, sessionPrefix+token, strconv.FormatInt(org.ID, 10), sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &SessionInfo{
		Token:       token,
		OrganizerID: org.ID,
		Email:       org.Email,
		Name:        org.Name,
	}, nil
}
