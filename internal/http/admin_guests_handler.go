package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"planora/internal/domain"
	"planora/internal/repository"
	"planora/internal/service"
)

const workbookMaxBytes = 10 << 20

// GuestHandler organizer dashboard endpoints for the guest list.
type GuestHandler struct {
	guests service.GuestService
	logger *zap.Logger
}

func NewGuestHandler(guests service.GuestService, logger *zap.Logger) *GuestHandler {
	return &GuestHandler{guests: guests, logger: logger}
}

func (h *GuestHandler) Routes(r chi.Router) {
	r.Get("/events/{eventID}/guests", h.ListGuests)
	r.Post("/events/{eventID}/guests", h.CreateGuest)
	r.Get("/events/{eventID}/guests/{guestID}", h.GetGuest)
	r.Put("/events/{eventID}/guests/{guestID}", h.UpdateGuest)
	r.Delete("/events/{eventID}/guests/{guestID}", h.DeleteGuest)

	r.Get("/events/{eventID}/guests/{guestID}/notifications", h.GuestNotifications)

	r.Get("/guests/import-template", h.ImportTemplate)
	r.Post("/events/{eventID}/guests/import", h.ImportGuests)
	r.Get("/events/{eventID}/guests/export", h.ExportGuests)

	r.Post("/events/{eventID}/rsvp-links", h.RSVPLinks)
}

type guestPage struct {
	Items []*domain.Guest `json:"items"`
	Total int             `json:"total"`
}

func (h *GuestHandler) ListGuests(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	filters := repository.GuestFilters{
		RSVPStatus: r.URL.Query().Get("status"),
		Search:     r.URL.Query().Get("search"),
	}
	page := parseInt(r.URL.Query().Get("page"), 1)
	size := parseInt(r.URL.Query().Get("size"), 50)

	guests, total, err := h.guests.ListGuests(r.Context(), org.ID, urlID(r, "eventID"), filters, page, size)
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(guestPage{Items: guests, Total: total}))
}

func (h *GuestHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	var guest domain.Guest
	if err := readBodyJSON(r, rsvpMaxBody, &guest); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	guest.EventID = urlID(r, "eventID")
	id, err := h.guests.CreateGuest(r.Context(), org.ID, &guest)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	guest.ID = id
	writeJSON(w, http.StatusOK, Ok(&guest))
}

func (h *GuestHandler) GetGuest(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	guest, err := h.guests.GetGuest(r.Context(), org.ID, urlID(r, "eventID"), urlID(r, "guestID"))
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(guest))
}

func (h *GuestHandler) UpdateGuest(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	var guest domain.Guest
	if err := readBodyJSON(r, rsvpMaxBody, &guest); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	guest.EventID = urlID(r, "eventID")
	guest.ID = urlID(r, "guestID")
	if err := h.guests.UpdateGuest(r.Context(), org.ID, &guest); err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

func (h *GuestHandler) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	if err := h.guests.DeleteGuest(r.Context(), org.ID, urlID(r, "eventID"), urlID(r, "guestID")); err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

func (h *GuestHandler) GuestNotifications(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	records, err := h.guests.GuestNotifications(r.Context(), org.ID, urlID(r, "eventID"), urlID(r, "guestID"))
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(records))
}

func (h *GuestHandler) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := h.guests.ImportTemplate()
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeWorkbook(w, "guest-import-template.xlsx", data)
}

func (h *GuestHandler) ImportGuests(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())

	// Accept both a raw body and a multipart "file" field.
	var data []byte
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		data, err = io.ReadAll(io.LimitReader(file, workbookMaxBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("failed to read upload"))
			return
		}
	} else {
		var rerr error
		data, rerr = io.ReadAll(io.LimitReader(r.Body, workbookMaxBytes))
		if rerr != nil {
			writeJSON(w, http.StatusBadRequest, Fail("failed to read upload"))
			return
		}
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, Fail("no workbook uploaded"))
		return
	}

	summary, err := h.guests.ImportGuests(r.Context(), org.ID, urlID(r, "eventID"), data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(summary))
}

func (h *GuestHandler) ExportGuests(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	data, err := h.guests.ExportGuests(r.Context(), org.ID, urlID(r, "eventID"))
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeWorkbook(w, "guests.xlsx", data)
}

type rsvpLinksRequest struct {
	GuestIDs []int64 `json:"guestIds"`
}

func (h *GuestHandler) RSVPLinks(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	var req rsvpLinksRequest
	if err := readBodyJSON(r, rsvpMaxBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	links, err := h.guests.RSVPLinks(r.Context(), org.ID, urlID(r, "eventID"), req.GuestIDs)
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(links))
}

func writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
