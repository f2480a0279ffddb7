package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"planora/internal/domain"
	"planora/internal/repository"
	"planora/internal/service"
)

// EventHandler organizer dashboard endpoints for events and their
// sub-resources. All routes sit behind requireAuth.
type EventHandler struct {
	events service.EventService
	logger *zap.Logger
}

func NewEventHandler(events service.EventService, logger *zap.Logger) *EventHandler {
	return &EventHandler{events: events, logger: logger}
}

func (h *EventHandler) Routes(r chi.Router) {
	r.Get("/events", h.ListEvents)
	r.Post("/events", h.CreateEvent)
	r.Get("/events/{eventID}", h.GetEvent)
	r.Put("/events/{eventID}", h.UpdateEvent)

	r.Put("/events/{eventID}/communication", h.UpdateCommunication)
	r.Get("/events/{eventID}/wizard", h.GetWizard)
	r.Put("/events/{eventID}/wizard", h.SaveWizard)
	r.Get("/events/{eventID}/statistics", h.Statistics)

	r.Get("/events/{eventID}/ceremonies", h.ListCeremonies)
	r.Post("/events/{eventID}/ceremonies", h.CreateCeremony)
	r.Put("/events/{eventID}/ceremonies/{ceremonyID}", h.UpdateCeremony)
	r.Delete("/events/{eventID}/ceremonies/{ceremonyID}", h.DeleteCeremony)
	r.Post("/events/{eventID}/ceremonies/{ceremonyID}/meal-options", h.AddMealOption)
	r.Delete("/events/{eventID}/ceremonies/{ceremonyID}/meal-options/{optionID}", h.RemoveMealOption)

	r.Get("/events/{eventID}/hotels", h.ListHotels)
	r.Post("/events/{eventID}/hotels", h.CreateHotel)
	r.Put("/events/{eventID}/hotels/{hotelID}", h.UpdateHotel)
	r.Delete("/events/{eventID}/hotels/{hotelID}", h.DeleteHotel)
	r.Get("/events/{eventID}/room-assignments", h.ListRoomAssignments)

	r.Get("/events/{eventID}/templates", h.ListTemplates)
	r.Put("/events/{eventID}/templates", h.SaveTemplate)
	r.Delete("/events/{eventID}/templates/{templateID}", h.DeleteTemplate)

	r.Get("/events/{eventID}/messages", h.ListMessages)
	r.Get("/events/{eventID}/notifications", h.ListNotifications)
}

// writeAdminError shared admin-side error mapping.
func writeAdminError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}
	logger.Error("admin request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, Fail("something went wrong, please try again later"))
}

func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	events, err := h.events.ListEvents(r.Context(), org.ID)
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(events))
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	var event domain.WeddingEvent
	if err := readBodyJSON(r, rsvpMaxBody, &event); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	created, err := h.events.CreateEvent(r.Context(), org.ID, &event)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(created))
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	event, err := h.events.GetEvent(r.Context(), org.ID, urlID(r, "eventID"))
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(event))
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	var event domain.WeddingEvent
	if err := readBodyJSON(r, rsvpMaxBody, &event); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	event.ID = urlID(r, "eventID")
	if err := h.events.UpdateEvent(r.Context(), org.ID, &event); err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

func (h *EventHandler) UpdateCommunication(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	var settings domain.CommunicationSettings
	if err := readBodyJSON(r, rsvpMaxBody, &settings); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if err := h.events.UpdateCommunicationSettings(r.Context(), org.ID, urlID(r, "eventID"), settings); err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

func (h *EventHandler) GetWizard(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	state, err := h.events.GetWizard(r.Context(), org.ID, urlID(r, "eventID"))
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(state))
}

type saveWizardRequest struct {
	CurrentStep    string   `json:"currentStep"`
	CompletedSteps []string `json:"completedSteps"`
}

func (h *EventHandler) SaveWizard(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	var req saveWizardRequest
	if err := readBodyJSON(r, rsvpMaxBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	state, err := h.events.SaveWizard(r.Context(), org.ID, urlID(r, "eventID"), req.CurrentStep, req.CompletedSteps)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("not found"))
			return
		}
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(state))
}

func (h *EventHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	stats, err := h.events.Statistics(r.Context(), org.ID, urlID(r, "eventID"))
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(stats))
}

func (h *EventHandler) ListCeremonies(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	ceremonies, err := h.events.ListCeremonies(r.Context(), org.ID, urlID(r, "eventID"))
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(ceremonies))
}

func (h *EventHandler) CreateCeremony(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	var ceremony domain.Ceremony
	if err := readBodyJSON(r, rsvpMaxBody, &ceremony); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	ceremony.EventID = urlID(r, "eventID")
	id, err := h.events.CreateCeremony(r.Context(), org.ID, &ceremony)
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	ceremony.ID = id
	writeJSON(w, http.StatusOK, Ok(&ceremony))
}

func (h *EventHandler) UpdateCeremony(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	var ceremony domain.Ceremony
	if err := readBodyJSON(r, rsvpMaxBody, &ceremony); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	ceremony.EventID = urlID(r, "eventID")
	ceremony.ID = urlID(r, "ceremonyID")
	if err := h.events.UpdateCeremony(r.Context(), org.ID, &ceremony); err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

func (h *EventHandler) DeleteCeremony(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	if err := h.events.DeleteCeremony(r.Context(), org.ID, urlID(r, "eventID"), urlID(r, "ceremonyID")); err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

func (h *EventHandler) AddMealOption(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	var option domain.MealOption
	if err := readBodyJSON(r, rsvpMaxBody, &option); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	option.CeremonyID = urlID(r, "ceremonyID")
	id, err := h.events.AddMealOption(r.Context(), org.ID, urlID(r, "eventID"), &option)
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	option.ID = id
	writeJSON(w, http.StatusOK, Ok(&option))
}

func (h *EventHandler) RemoveMealOption(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	err := h.events.RemoveMealOption(r.Context(), org.ID,
		urlID(r, "eventID"), urlID(r, "ceremonyID"), urlID(r, "optionID"))
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

func (h *EventHandler) ListHotels(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	hotels, err := h.events.ListHotels(r.Context(), org.ID, urlID(r, "eventID"))
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(hotels))
}

func (h *EventHandler) CreateHotel(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	var hotel domain.Hotel
	if err := readBodyJSON(r, rsvpMaxBody, &hotel); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	hotel.EventID = urlID(r, "eventID")
	id, err := h.events.CreateHotel(r.Context(), org.ID, &hotel)
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	hotel.ID = id
	writeJSON(w, http.StatusOK, Ok(&hotel))
}

func (h *EventHandler) UpdateHotel(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	var hotel domain.Hotel
	if err := readBodyJSON(r, rsvpMaxBody, &hotel); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	hotel.EventID = urlID(r, "eventID")
	hotel.ID = urlID(r, "hotelID")
	if err := h.events.UpdateHotel(r.Context(), org.ID, &hotel); err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

func (h *EventHandler) DeleteHotel(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	if err := h.events.DeleteHotel(r.Context(), org.ID, urlID(r, "eventID"), urlID(r, "hotelID")); err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

func (h *EventHandler) ListRoomAssignments(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	assignments, err := h.events.ListRoomAssignments(r.Context(), org.ID, urlID(r, "eventID"))
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(assignments))
}

func (h *EventHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	templates, err := h.events.ListTemplates(r.Context(), org.ID, urlID(r, "eventID"))
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(templates))
}

func (h *EventHandler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	var tpl domain.MessageTemplate
	if err := readBodyJSON(r, rsvpMaxBody, &tpl); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	tpl.EventID = urlID(r, "eventID")
	if err := h.events.SaveTemplate(r.Context(), org.ID, &tpl); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("not found"))
			return
		}
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

func (h *EventHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	if err := h.events.DeleteTemplate(r.Context(), org.ID, urlID(r, "eventID"), urlID(r, "templateID")); err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

func (h *EventHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	messages, err := h.events.ListMessages(r.Context(), org.ID, urlID(r, "eventID"))
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(messages))
}

type notificationPage struct {
	Items []*domain.NotificationRecord `json:"items"`
	Total int                          `json:"total"`
}

func (h *EventHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	org := organizerFrom(r.Context())
	page := parseInt(r.URL.Query().Get("page"), 1)
	size := parseInt(r.URL.Query().Get("size"), 50)
	items, total, err := h.events.ListNotifications(r.Context(), org.ID, urlID(r, "eventID"), page, size)
	if err != nil {
		writeAdminError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(notificationPage{Items: items, Total: total}))
}
