package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"planora/internal/notify"
	"planora/internal/repository"
	"planora/internal/rsvp"
	"planora/internal/token"
)

const rsvpMaxBody = 1 << 20

// RSVPHandler the public guest-facing endpoints. Everything is keyed by
// the personal link token; there is no other authentication.
type RSVPHandler struct {
	svc        *rsvp.Service
	dispatcher *notify.Dispatcher
	events     repository.EventsRepo
	guests     repository.GuestsRepo
	logger     *zap.Logger
}

func NewRSVPHandler(svc *rsvp.Service, dispatcher *notify.Dispatcher, events repository.EventsRepo, guests repository.GuestsRepo, logger *zap.Logger) *RSVPHandler {
	return &RSVPHandler{svc: svc, dispatcher: dispatcher, events: events, guests: guests, logger: logger}
}

func (h *RSVPHandler) Routes(r chi.Router) {
	r.Get("/{token}", h.Verify)
	r.Post("/{token}/stage1", h.SubmitStage1)
	r.Post("/{token}/stage2", h.SubmitStage2)
	r.Post("/{token}/submit", h.SubmitCombined)
	r.Post("/{token}/response", h.SubmitLegacy)
}

func (h *RSVPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.VerifyLink(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

func (h *RSVPHandler) SubmitStage1(w http.ResponseWriter, r *http.Request) {
	var req rsvp.Stage1Request
	h.submit(w, r, &req, func(ctx context.Context, eventID, guestID int64) (*rsvp.SubmitResult, []notify.Effect, error) {
		return h.svc.SubmitStage1(ctx, eventID, guestID, req)
	})
}

func (h *RSVPHandler) SubmitStage2(w http.ResponseWriter, r *http.Request) {
	var req rsvp.Stage2Request
	h.submit(w, r, &req, func(ctx context.Context, eventID, guestID int64) (*rsvp.SubmitResult, []notify.Effect, error) {
		return h.svc.SubmitStage2(ctx, eventID, guestID, req)
	})
}

func (h *RSVPHandler) SubmitCombined(w http.ResponseWriter, r *http.Request) {
	var req rsvp.CombinedRequest
	h.submit(w, r, &req, func(ctx context.Context, eventID, guestID int64) (*rsvp.SubmitResult, []notify.Effect, error) {
		return h.svc.SubmitCombined(ctx, eventID, guestID, req)
	})
}

func (h *RSVPHandler) SubmitLegacy(w http.ResponseWriter, r *http.Request) {
	var req rsvp.LegacyRequest
	h.submit(w, r, &req, func(ctx context.Context, eventID, guestID int64) (*rsvp.SubmitResult, []notify.Effect, error) {
		return h.svc.SubmitLegacy(ctx, eventID, guestID, req)
	})
}

type submitFunc func(ctx context.Context, eventID, guestID int64) (*rsvp.SubmitResult, []notify.Effect, error)

// submit is the shared flow for all four submit endpoints: resolve the
// token, decode the body, run the state machine, answer, then hand the
// effects to the dispatcher off the request path.
func (h *RSVPHandler) submit(w http.ResponseWriter, r *http.Request, body any, run submitFunc) {
	claims, err := h.svc.ResolveToken(chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := readBodyJSON(r, rsvpMaxBody, body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	result, effects, err := run(r.Context(), claims.EventID, claims.GuestID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))

	if len(effects) > 0 {
		go h.dispatch(claims.EventID, claims.GuestID, effects)
	}
}

// dispatch runs off the request goroutine; a provider outage never
// delays or fails the guest's submission.
func (h *RSVPHandler) dispatch(eventID, guestID int64, effects []notify.Effect) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	event, err := h.events.GetEvent(ctx, eventID)
	if err != nil {
		h.logger.Warn("notification dispatch: failed to load event",
			zap.Int64("event_id", eventID), zap.Error(err))
		return
	}
	guest, err := h.guests.GetGuest(ctx, eventID, guestID)
	if err != nil {
		h.logger.Warn("notification dispatch: failed to load guest",
			zap.Int64("event_id", eventID), zap.Int64("guest_id", guestID), zap.Error(err))
		return
	}
	h.dispatcher.Dispatch(ctx, event, guest, effects)
}

// writeError maps the RSVP error taxonomy onto HTTP. Not-found cases
// share one generic message so link tokens cannot probe for ids.
func (h *RSVPHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, token.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, Fail("this RSVP link is not valid"))
	case errors.Is(err, token.ErrExpiredToken):
		writeJSON(w, http.StatusUnauthorized, Fail("this RSVP link has expired"))
	case errors.Is(err, rsvp.ErrGuestNotFound), errors.Is(err, rsvp.ErrEventNotFound):
		writeJSON(w, http.StatusNotFound, Fail("this RSVP link is no longer valid"))
	case errors.Is(err, rsvp.ErrStageNotAllowed):
		writeJSON(w, http.StatusConflict, Fail("please confirm your attendance first"))
	default:
		if ve, ok := rsvp.AsValidationError(err); ok {
			writeJSON(w, http.StatusBadRequest, FailWith("validation failed", ve.Fields))
			return
		}
		h.logger.Error("rsvp request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("something went wrong, please try again later"))
	}
}
