// Package oauth handles the Google authorization flow used to let an
// organizer send RSVP emails from their own Gmail account. Planora
// stores only the refresh token (on the event's communication
// settings); access tokens are minted per send.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"planora/internal/store"
)

const (
	authEndpoint   = "https://accounts.google.com/o/oauth2/v2/auth"
	tokenEndpoint  = "https://oauth2.googleapis.com/token"
	gmailSendScope = "https://www.googleapis.com/auth/gmail.send"

	// CSRF state lives long enough for the consent screen round trip.
	stateTTL    = 10 * time.Minute
	statePrefix = "oauth:state:"
)

var ErrInvalidState = errors.New("unknown or expired oauth state")

// GoogleConfig client credentials for the installed OAuth app.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func (c GoogleConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != ""
}

// Manager runs the authorization-code flow. State is kept in the shared
// KV so the callback can land on any instance.
type Manager struct {
	cfg    GoogleConfig
	kv     store.KV
	client *resty.Client
	logger *zap.Logger

	authURL  string
	tokenURL string
}

func NewManager(cfg GoogleConfig, kv store.KV, client *resty.Client, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		kv:       kv,
		client:   client,
		logger:   logger,
		authURL:  authEndpoint,
		tokenURL: tokenEndpoint,
	}
}

func (m *Manager) Configured() bool { return m.cfg.Configured() }

// AuthURL issues a fresh state bound to the event and returns the
// consent URL to redirect the organizer to.
func (m *Manager) AuthURL(ctx context.Context, eventID int64) (string, error) {
	if !m.cfg.Configured() {
		return "", fmt.Errorf("google oauth is not configured")
	}
	state := uuid.NewString()
	if err := m.kv.Set(ctx, statePrefix+state, strconv.FormatInt(eventID, 10), stateTTL); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	q := url.Values{}
	q.Set("client_id", m.cfg.ClientID)
	q.Set("redirect_uri", m.cfg.RedirectURL)
	q.Set("response_type", "code")
	q.Set("scope", gmailSendScope)
	q.Set("state", state)
	q.Set("access_type", "offline")
	q.Set("prompt", "consent") // force a refresh token on re-consent
	return m.authURL + "?" + q.Encode(), nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

type tokenError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

// Exchange validates the callback state and trades the code for a
// refresh token. Returns the event the flow was started for.
func (m *Manager) Exchange(ctx context.Context, state, code string) (eventID int64, refreshToken string, err error) {
	raw, err := m.kv.Get(ctx, statePrefix+state)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return 0, "", ErrInvalidState
		}
		return 0, "", fmt.Errorf("failed to load oauth state: %w", err)
	}
	// Single use.
	if err := m.kv.Delete(ctx, statePrefix+state); err != nil {
		m.logger.Warn("failed to delete oauth state", zap.Error(err))
	}
	eventID, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, "", ErrInvalidState
	}

	var tok tokenResponse
	var apiErr tokenError
	resp, err := m.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     m.cfg.ClientID,
			"client_secret": m.cfg.ClientSecret,
			"redirect_uri":  m.cfg.RedirectURL,
			"grant_type":    "authorization_code",
			"code":          code,
		}).
		SetResult(&tok).
		SetError(&apiErr).
		Post(m.tokenURL)
	if err != nil {
		return 0, "", fmt.Errorf("token exchange request failed: %w", err)
	}
	if resp.IsError() {
		return 0, "", fmt.Errorf("token exchange rejected: %s (%s)", apiErr.Code, apiErr.Description)
	}
	if tok.RefreshToken == "" {
		return 0, "", fmt.Errorf("token exchange returned no refresh token")
	}
	return eventID, tok.RefreshToken, nil
}

// AccessToken mints a short-lived access token from a stored refresh
// token. Satisfies the notify package's GmailTokenSource.
func (m *Manager) AccessToken(ctx context.Context, refreshToken string) (string, error) {
	var tok tokenResponse
	var apiErr tokenError
	resp, err := m.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     m.cfg.ClientID,
			"client_secret": m.cfg.ClientSecret,
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
		}).
		SetResult(&tok).
		SetError(&apiErr).
		Post(m.tokenURL)
	if err != nil {
		return "", fmt.Errorf("token refresh request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("token refresh rejected: %s (%s)", apiErr.Code, apiErr.Description)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token refresh returned no access token")
	}
	return tok.AccessToken, nil
}
