package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"planora/internal/domain"
	"planora/internal/repository"
)

// EventService organizer-facing event management. Every operation takes
// the acting organizer's id and refuses to touch events they do not own.
type EventService interface {
	CreateEvent(ctx context.Context, organizerID int64, event *domain.WeddingEvent) (*domain.WeddingEvent, error)
	GetEvent(ctx context.Context, organizerID, eventID int64) (*domain.WeddingEvent, error)
	ListEvents(ctx context.Context, organizerID int64) ([]*domain.WeddingEvent, error)
	UpdateEvent(ctx context.Context, organizerID int64, event *domain.WeddingEvent) error

	UpdateCommunicationSettings(ctx context.Context, organizerID, eventID int64, settings domain.CommunicationSettings) error
	// SetGmailRefreshToken stores the token obtained from the OAuth
	// callback without disturbing the rest of the provider block.
	SetGmailRefreshToken(ctx context.Context, eventID int64, refreshToken string) error

	GetWizard(ctx context.Context, organizerID, eventID int64) (*domain.WizardState, error)
	SaveWizard(ctx context.Context, organizerID, eventID int64, currentStep string, completedSteps []string) (*domain.WizardState, error)

	ListCeremonies(ctx context.Context, organizerID, eventID int64) ([]*CeremonyWithOptions, error)
	CreateCeremony(ctx context.Context, organizerID int64, ceremony *domain.Ceremony) (int64, error)
	UpdateCeremony(ctx context.Context, organizerID int64, ceremony *domain.Ceremony) error
	DeleteCeremony(ctx context.Context, organizerID, eventID, ceremonyID int64) error
	AddMealOption(ctx context.Context, organizerID, eventID int64, option *domain.MealOption) (int64, error)
	RemoveMealOption(ctx context.Context, organizerID, eventID, ceremonyID, optionID int64) error

	ListHotels(ctx context.Context, organizerID, eventID int64) ([]*HotelWithOccupancy, error)
	CreateHotel(ctx context.Context, organizerID int64, hotel *domain.Hotel) (int64, error)
	UpdateHotel(ctx context.Context, organizerID int64, hotel *domain.Hotel) error
	DeleteHotel(ctx context.Context, organizerID, eventID, hotelID int64) error
	ListRoomAssignments(ctx context.Context, organizerID, eventID int64) ([]*domain.RoomAssignment, error)

	ListTemplates(ctx context.Context, organizerID, eventID int64) ([]*domain.MessageTemplate, error)
	SaveTemplate(ctx context.Context, organizerID int64, tpl *domain.MessageTemplate) error
	DeleteTemplate(ctx context.Context, organizerID, eventID, templateID int64) error

	ListMessages(ctx context.Context, organizerID, eventID int64) ([]*domain.CoupleMessage, error)
	ListNotifications(ctx context.Context, organizerID, eventID int64, page, size int) ([]*domain.NotificationRecord, int, error)

	Statistics(ctx context.Context, organizerID, eventID int64) (*EventStatistics, error)
}

type eventService struct {
	events        repository.EventsRepo
	guests        repository.GuestsRepo
	ceremonies    repository.CeremoniesRepo
	attendance    repository.AttendanceRepo
	travel        repository.TravelRepo
	messages      repository.MessagesRepo
	hotels        repository.HotelsRepo
	templates     repository.TemplatesRepo
	wizard        repository.WizardRepo
	notifications repository.NotificationsRepo
	logger        *zap.Logger
}

// EventServiceDeps constructor wiring for NewEventService.
type EventServiceDeps struct {
	Events        repository.EventsRepo
	Guests        repository.GuestsRepo
	Ceremonies    repository.CeremoniesRepo
	Attendance    repository.AttendanceRepo
	Travel        repository.TravelRepo
	Messages      repository.MessagesRepo
	Hotels        repository.HotelsRepo
	Templates     repository.TemplatesRepo
	Wizard        repository.WizardRepo
	Notifications repository.NotificationsRepo
	Logger        *zap.Logger
}

func NewEventService(deps EventServiceDeps) EventService {
	return &eventService{
		events:        deps.Events,
		guests:        deps.Guests,
		ceremonies:    deps.Ceremonies,
		attendance:    deps.Attendance,
		travel:        deps.Travel,
		messages:      deps.Messages,
		hotels:        deps.Hotels,
		templates:     deps.Templates,
		wizard:        deps.Wizard,
		notifications: deps.Notifications,
		logger:        deps.Logger,
	}
}

// CeremonyWithOptions a ceremony plus its meal options, as the dashboard
// shows them.
type CeremonyWithOptions struct {
	Ceremony    *domain.Ceremony     `json:"ceremony"`
	MealOptions []*domain.MealOption `json:"mealOptions"`
}

// HotelWithOccupancy a hotel plus how many of its rooms are assigned.
type HotelWithOccupancy struct {
	Hotel         *domain.Hotel `json:"hotel"`
	RoomsAssigned int           `json:"roomsAssigned"`
}

// EventStatistics the dashboard summary block.
type EventStatistics struct {
	TotalGuests          int            `json:"totalGuests"`
	ByStatus             map[string]int `json:"byStatus"`
	AttendingByCeremony  map[int64]int  `json:"attendingByCeremony"`
	ByMealOption         map[int64]int  `json:"byMealOption"`
	NeedingTransport     int            `json:"needingTransport"`
	RoomsAssignedByHotel map[int64]int  `json:"roomsAssignedByHotel"`
}

// requireEvent is the ownership gate every operation goes through.
func (s *eventService) requireEvent(ctx context.Context, organizerID, eventID int64) (*domain.WeddingEvent, error) {
	return s.events.GetEventForOrganizer(ctx, organizerID, eventID)
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID int64, event *domain.WeddingEvent) (*domain.WeddingEvent, error) {
	event.Title = strings.TrimSpace(event.Title)
	event.CoupleNames = strings.TrimSpace(event.CoupleNames)
	if event.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if event.EndsOn.Before(event.StartsOn) {
		return nil, fmt.Errorf("event cannot end before it starts")
	}
	event.OrganizerID = organizerID

	id, err := s.events.CreateEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	event.ID = id

	// Seed the wizard so the dashboard lands on step one.
	state := &domain.WizardState{
		EventID:        id,
		CurrentStep:    domain.WizardSteps[0],
		CompletedSteps: json.RawMessage(`[]`),
		UpdatedAt:      time.Now(),
	}
	if err := s.wizard.Save(ctx, state); err != nil {
		s.logger.Warn("failed to seed wizard state", zap.Int64("event_id", id), zap.Error(err))
	}

	s.logger.Info("event created",
		zap.Int64("event_id", id), zap.Int64("organizer_id", organizerID), zap.String("title", event.Title))
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, organizerID, eventID int64) (*domain.WeddingEvent, error) {
	return s.requireEvent(ctx, organizerID, eventID)
}

func (s *eventService) ListEvents(ctx context.Context, organizerID int64) ([]*domain.WeddingEvent, error) {
	return s.events.ListEvents(ctx, organizerID)
}

func (s *eventService) UpdateEvent(ctx context.Context, organizerID int64, event *domain.WeddingEvent) error {
	existing, err := s.requireEvent(ctx, organizerID, event.ID)
	if err != nil {
		return err
	}
	event.OrganizerID = existing.OrganizerID
	// Provider credentials have their own endpoint.
	event.Communication = existing.Communication
	if event.EndsOn.Before(event.StartsOn) {
		return fmt.Errorf("event cannot end before it starts")
	}
	return s.events.UpdateEvent(ctx, event)
}

func (s *eventService) UpdateCommunicationSettings(ctx context.Context, organizerID, eventID int64, settings domain.CommunicationSettings) error {
	existing, err := s.requireEvent(ctx, organizerID, eventID)
	if err != nil {
		return err
	}
	// The refresh token only ever arrives via the OAuth callback.
	settings.GmailRefreshToken = existing.Communication.GmailRefreshToken
	if err := s.events.UpdateCommunicationSettings(ctx, eventID, settings); err != nil {
		return fmt.Errorf("failed to update communication settings: %w", err)
	}
	s.logger.Info("communication settings updated",
		zap.Int64("event_id", eventID), zap.String("email_provider", settings.EmailProvider))
	return nil
}

func (s *eventService) SetGmailRefreshToken(ctx context.Context, eventID int64, refreshToken string) error {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	settings := event.Communication
	settings.EmailProvider = domain.EmailProviderGmail
	settings.GmailRefreshToken = refreshToken
	return s.events.UpdateCommunicationSettings(ctx, eventID, settings)
}

func (s *eventService) GetWizard(ctx context.Context, organizerID, eventID int64) (*domain.WizardState, error) {
	if _, err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, err
	}
	state, err := s.wizard.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.WizardState{
				EventID:        eventID,
				CurrentStep:    domain.WizardSteps[0],
				CompletedSteps: json.RawMessage(`[]`),
			}, nil
		}
		return nil, err
	}
	return state, nil
}

func (s *eventService) SaveWizard(ctx context.Context, organizerID, eventID int64, currentStep string, completedSteps []string) (*domain.WizardState, error) {
	if _, err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, err
	}
	if !domain.ValidWizardStep(currentStep) {
		return nil, fmt.Errorf("unknown wizard step %q", currentStep)
	}
	for _, step := range completedSteps {
		if !domain.ValidWizardStep(step) {
			return nil, fmt.Errorf("unknown wizard step %q", step)
		}
	}
	completed, err := json.Marshal(completedSteps)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completed steps: %w", err)
	}
	state := &domain.WizardState{
		EventID:        eventID,
		CurrentStep:    currentStep,
		CompletedSteps: completed,
		UpdatedAt:      time.Now(),
	}
	if err := s.wizard.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save wizard state: %w", err)
	}
	return state, nil
}

func (s *eventService) ListCeremonies(ctx context.Context, organizerID, eventID int64) ([]*CeremonyWithOptions, error) {
	if _, err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, err
	}
	ceremonies, err := s.ceremonies.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	options, err := s.ceremonies.ListMealOptionsByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	out := make([]*CeremonyWithOptions, 0, len(ceremonies))
	for _, c := range ceremonies {
		out = append(out, &CeremonyWithOptions{Ceremony: c, MealOptions: options[c.ID]})
	}
	return out, nil
}

func (s *eventService) CreateCeremony(ctx context.Context, organizerID int64, ceremony *domain.Ceremony) (int64, error) {
	if _, err := s.requireEvent(ctx, organizerID, ceremony.EventID); err != nil {
		return 0, err
	}
	if strings.TrimSpace(ceremony.Name) == "" {
		return 0, fmt.Errorf("ceremony name is required")
	}
	return s.ceremonies.CreateCeremony(ctx, ceremony)
}

func (s *eventService) UpdateCeremony(ctx context.Context, organizerID int64, ceremony *domain.Ceremony) error {
	if _, err := s.requireEvent(ctx, organizerID, ceremony.EventID); err != nil {
		return err
	}
	if _, err := s.ceremonies.GetCeremony(ctx, ceremony.EventID, ceremony.ID); err != nil {
		return err
	}
	return s.ceremonies.UpdateCeremony(ctx, ceremony)
}

func (s *eventService) DeleteCeremony(ctx context.Context, organizerID, eventID, ceremonyID int64) error {
	if _, err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return err
	}
	return s.ceremonies.DeleteCeremony(ctx, eventID, ceremonyID)
}

func (s *eventService) AddMealOption(ctx context.Context, organizerID, eventID int64, option *domain.MealOption) (int64, error) {
	if _, err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return 0, err
	}
	// The ceremony must belong to the same event.
	if _, err := s.ceremonies.GetCeremony(ctx, eventID, option.CeremonyID); err != nil {
		return 0, err
	}
	if strings.TrimSpace(option.Name) == "" {
		return 0, fmt.Errorf("meal option name is required")
	}
	return s.ceremonies.CreateMealOption(ctx, option)
}

func (s *eventService) RemoveMealOption(ctx context.Context, organizerID, eventID, ceremonyID, optionID int64) error {
	if _, err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return err
	}
	if _, err := s.ceremonies.GetCeremony(ctx, eventID, ceremonyID); err != nil {
		return err
	}
	return s.ceremonies.DeleteMealOption(ctx, ceremonyID, optionID)
}

func (s *eventService) ListHotels(ctx context.Context, organizerID, eventID int64) ([]*HotelWithOccupancy, error) {
	if _, err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, err
	}
	hotels, err := s.hotels.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	occupancy, err := s.hotels.Occupancy(ctx, eventID)
	if err != nil {
		return nil, err
	}
	out := make([]*HotelWithOccupancy, 0, len(hotels))
	for _, h := range hotels {
		out = append(out, &HotelWithOccupancy{Hotel: h, RoomsAssigned: occupancy[h.ID]})
	}
	return out, nil
}

func (s *eventService) CreateHotel(ctx context.Context, organizerID int64, hotel *domain.Hotel) (int64, error) {
	if _, err := s.requireEvent(ctx, organizerID, hotel.EventID); err != nil {
		return 0, err
	}
	if strings.TrimSpace(hotel.Name) == "" {
		return 0, fmt.Errorf("hotel name is required")
	}
	if hotel.RoomCount < 0 {
		return 0, fmt.Errorf("room count cannot be negative")
	}
	return s.hotels.CreateHotel(ctx, hotel)
}

func (s *eventService) UpdateHotel(ctx context.Context, organizerID int64, hotel *domain.Hotel) error {
	if _, err := s.requireEvent(ctx, organizerID, hotel.EventID); err != nil {
		return err
	}
	if _, err := s.hotels.GetHotel(ctx, hotel.EventID, hotel.ID); err != nil {
		return err
	}
	return s.hotels.UpdateHotel(ctx, hotel)
}

func (s *eventService) DeleteHotel(ctx context.Context, organizerID, eventID, hotelID int64) error {
	if _, err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return err
	}
	return s.hotels.DeleteHotel(ctx, eventID, hotelID)
}

func (s *eventService) ListRoomAssignments(ctx context.Context, organizerID, eventID int64) ([]*domain.RoomAssignment, error) {
	if _, err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, err
	}
	return s.hotels.ListAssignments(ctx, eventID)
}

func (s *eventService) ListTemplates(ctx context.Context, organizerID, eventID int64) ([]*domain.MessageTemplate, error) {
	if _, err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, err
	}
	return s.templates.ListByEvent(ctx, eventID)
}

func (s *eventService) SaveTemplate(ctx context.Context, organizerID int64, tpl *domain.MessageTemplate) error {
	if _, err := s.requireEvent(ctx, organizerID, tpl.EventID); err != nil {
		return err
	}
	if tpl.Channel != domain.ChannelEmail && tpl.Channel != domain.ChannelWhatsApp {
		return fmt.Errorf("unknown channel %q", tpl.Channel)
	}
	if strings.TrimSpace(tpl.Name) == "" || strings.TrimSpace(tpl.Body) == "" {
		return fmt.Errorf("template name and body are required")
	}
	return s.templates.Upsert(ctx, tpl)
}

func (s *eventService) DeleteTemplate(ctx context.Context, organizerID, eventID, templateID int64) error {
	if _, err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return err
	}
	return s.templates.Delete(ctx, eventID, templateID)
}

func (s *eventService) ListMessages(ctx context.Context, organizerID, eventID int64) ([]*domain.CoupleMessage, error) {
	if _, err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, err
	}
	return s.messages.ListByEvent(ctx, eventID)
}

func (s *eventService) ListNotifications(ctx context.Context, organizerID, eventID int64, page, size int) ([]*domain.NotificationRecord, int, error) {
	if _, err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, 0, err
	}
	return s.notifications.ListByEvent(ctx, eventID, page, size)
}

func (s *eventService) Statistics(ctx context.Context, organizerID, eventID int64) (*EventStatistics, error) {
	if _, err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, err
	}
	byStatus, err := s.guests.CountByStatus(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count guests: %w", err)
	}
	total := 0
	for _, n := range byStatus {
		total += n
	}
	attending, err := s.attendance.CountAttendingByCeremony(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance: %w", err)
	}
	meals, err := s.attendance.CountByMealOption(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count meal selections: %w", err)
	}
	transport, err := s.travel.CountNeedingTransport(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count transport needs: %w", err)
	}
	occupancy, err := s.hotels.Occupancy(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to read occupancy: %w", err)
	}
	return &EventStatistics{
		TotalGuests:          total,
		ByStatus:             byStatus,
		AttendingByCeremony:  attending,
		ByMealOption:         meals,
		NeedingTransport:     transport,
		RoomsAssignedByHotel: occupancy,
	}, nil
}
