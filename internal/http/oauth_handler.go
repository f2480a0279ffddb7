package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"planora/internal/oauth"
	"planora/internal/service"
)

// OAuthHandler wires the Google consent flow. Start is an admin
// endpoint; the callback is public because Google redirects the
// organizer's browser there without our session header.
type OAuthHandler struct {
	manager *oauth.Manager
	events  service.EventService
	logger  *zap.Logger
}

func NewOAuthHandler(manager *oauth.Manager, events service.EventService, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{manager: manager, events: events, logger: logger}
}

type oauthStartResponse struct {
	AuthURL string `json:"authUrl"`
}

// Start begins the consent flow for one event. Ownership is checked
// before a state is minted.
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	eventID := urlID(r, "eventID")
	if _, err := h.events.GetEvent(r.Context(), org.ID, eventID); err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	authURL, err := h.manager.AuthURL(r.Context(), eventID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(oauthStartResponse{AuthURL: authURL}))
}

// Callback receives the consent redirect, stores the refresh token and
// shows a minimal close-this-tab page.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errCode := q.Get("error"); errCode != "" {
		h.logger.Warn("oauth consent denied", zap.String("error", errCode))
		writeCallbackPage(w, http.StatusBadRequest, "Authorization was cancelled. You can close this tab.")
		return
	}

	eventID, refreshToken, err := h.manager.Exchange(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidState) {
			writeCallbackPage(w, http.StatusBadRequest, "This authorization link is invalid or expired. Please start again from the dashboard.")
			return
		}
		h.logger.Error("oauth exchange failed", zap.Error(err))
		writeCallbackPage(w, http.StatusInternalServerError, "Something went wrong. Please start again from the dashboard.")
		return
	}

	if err := h.events.SetGmailRefreshToken(r.Context(), eventID, refreshToken); err != nil {
		h.logger.Error("failed to store gmail refresh token",
			zap.Int64("event_id", eventID), zap.Error(err))
		writeCallbackPage(w, http.StatusInternalServerError, "Something went wrong. Please start again from the dashboard.")
		return
	}

	h.logger.Info("gmail connected", zap.Int64("event_id", eventID))
	writeCallbackPage(w, http.StatusOK, "Gmail connected. You can close this tab and return to the dashboard.")
}

func writeCallbackPage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte("<!doctype html><html><body><p>" + message + "</p></body></html>"))
}
