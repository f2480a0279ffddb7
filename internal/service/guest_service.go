package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"planora/internal/domain"
	"planora/internal/repository"
	"planora/internal/token"
)

// GuestService organizer-facing guest management: CRUD, spreadsheet
// import/export and RSVP link generation. Same ownership gating as
// EventService.
type GuestService interface {
	GetGuest(ctx context.Context, organizerID, eventID, guestID int64) (*domain.Guest, error)
	ListGuests(ctx context.Context, organizerID, eventID int64, filters repository.GuestFilters, page, size int) ([]*domain.Guest, int, error)
	CreateGuest(ctx context.Context, organizerID int64, guest *domain.Guest) (int64, error)
	UpdateGuest(ctx context.Context, organizerID int64, guest *domain.Guest) error
	DeleteGuest(ctx context.Context, organizerID, eventID, guestID int64) error

	// ImportGuests creates one guest per workbook row. All-or-nothing
	// validation: a single bad row rejects the whole upload.
	ImportGuests(ctx context.Context, organizerID, eventID int64, workbook []byte) (*ImportSummary, error)
	ExportGuests(ctx context.Context, organizerID, eventID int64) ([]byte, error)
	ImportTemplate() ([]byte, error)

	// RSVPLinks mints a personal link per guest. Empty guestIDs means
	// every guest of the event.
	RSVPLinks(ctx context.Context, organizerID, eventID int64, guestIDs []int64) ([]GuestLink, error)

	GuestNotifications(ctx context.Context, organizerID, eventID, guestID int64) ([]*domain.NotificationRecord, error)
}

type guestService struct {
	events        repository.EventsRepo
	guests        repository.GuestsRepo
	notifications repository.NotificationsRepo
	codec         *token.Codec
	publicBaseURL string
	logger        *zap.Logger
}

func NewGuestService(events repository.EventsRepo, guests repository.GuestsRepo, notifications repository.NotificationsRepo, codec *token.Codec, publicBaseURL string, logger *zap.Logger) GuestService {
	return &guestService{
		events:        events,
		guests:        guests,
		notifications: notifications,
		codec:         codec,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// ImportSummary what a workbook upload produced.
type ImportSummary struct {
	Imported int `json:"imported"`
}

// GuestLink one guest's personal RSVP URL.
type GuestLink struct {
	GuestID   int64  `json:"guestId"`
	GuestName string `json:"guestName"`
	URL       string `json:"url"`
}

func (s *guestService) requireEvent(ctx context.Context, organizerID, eventID int64) error {
	_, err := s.events.GetEventForOrganizer(ctx, organizerID, eventID)
	return err
}

func (s *guestService) GetGuest(ctx context.Context, organizerID, eventID, guestID int64) (*domain.Guest, error) {
	if err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, err
	}
	return s.guests.GetGuest(ctx, eventID, guestID)
}

func (s *guestService) ListGuests(ctx context.Context, organizerID, eventID int64, filters repository.GuestFilters, page, size int) ([]*domain.Guest, int, error) {
	if err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 500 {
		size = 50
	}
	return s.guests.ListGuests(ctx, eventID, filters, page, size)
}

func (s *guestService) CreateGuest(ctx context.Context, organizerID int64, guest *domain.Guest) (int64, error) {
	if err := s.requireEvent(ctx, organizerID, guest.EventID); err != nil {
		return 0, err
	}
	guest.FirstName = strings.TrimSpace(guest.FirstName)
	guest.LastName = strings.TrimSpace(guest.LastName)
	if guest.FirstName == "" && guest.LastName == "" {
		return 0, fmt.Errorf("a guest needs at least a first or last name")
	}
	if guest.RSVPStatus == "" {
		guest.RSVPStatus = domain.RSVPPending
	}
	return s.guests.CreateGuest(ctx, guest)
}

func (s *guestService) UpdateGuest(ctx context.Context, organizerID int64, guest *domain.Guest) error {
	if err := s.requireEvent(ctx, organizerID, guest.EventID); err != nil {
		return err
	}
	if _, err := s.guests.GetGuest(ctx, guest.EventID, guest.ID); err != nil {
		return err
	}
	return s.guests.UpdateGuest(ctx, guest)
}

func (s *guestService) DeleteGuest(ctx context.Context, organizerID, eventID, guestID int64) error {
	if err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return err
	}
	return s.guests.DeleteGuest(ctx, eventID, guestID)
}

func (s *guestService) ImportGuests(ctx context.Context, organizerID, eventID int64, workbook []byte) (*ImportSummary, error) {
	if err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, err
	}
	guests, err := ParseGuestWorkbook(workbook)
	if err != nil {
		return nil, err
	}
	for _, guest := range guests {
		guest.EventID = eventID
		if _, err := s.guests.CreateGuest(ctx, guest); err != nil {
			return nil, fmt.Errorf("failed to create guest %s: %w", guest.FullName(), err)
		}
	}
	s.logger.Info("guests imported",
		zap.Int64("event_id", eventID), zap.Int("count", len(guests)))
	return &ImportSummary{Imported: len(guests)}, nil
}

func (s *guestService) ExportGuests(ctx context.Context, organizerID, eventID int64) ([]byte, error) {
	if err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, err
	}
	guests, _, err := s.guests.ListGuests(ctx, eventID, repository.GuestFilters{}, 1, exportPageSize)
	if err != nil {
		return nil, err
	}
	return BuildGuestExport(guests)
}

// exportPageSize caps a single export or link batch.
const exportPageSize = 5000

func (s *guestService) ImportTemplate() ([]byte, error) {
	return BuildGuestTemplate()
}

func (s *guestService) RSVPLinks(ctx context.Context, organizerID, eventID int64, guestIDs []int64) ([]GuestLink, error) {
	if err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, err
	}

	var guests []*domain.Guest
	if len(guestIDs) == 0 {
		all, _, err := s.guests.ListGuests(ctx, eventID, repository.GuestFilters{}, 1, exportPageSize)
		if err != nil {
			return nil, err
		}
		guests = all
	} else {
		for _, id := range guestIDs {
			guest, err := s.guests.GetGuest(ctx, eventID, id)
			if err != nil {
				return nil, err
			}
			guests = append(guests, guest)
		}
	}

	links := make([]GuestLink, 0, len(guests))
	for _, guest := range guests {
		tok, err := s.codec.Generate(guest.ID, eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token for guest %d: %w", guest.ID, err)
		}
		links = append(links, GuestLink{
			GuestID:   guest.ID,
			GuestName: guest.FullName(),
			URL:       s.publicBaseURL + "/rsvp/" + tok,
		})
	}
	return links, nil
}

func (s *guestService) GuestNotifications(ctx context.Context, organizerID, eventID, guestID int64) ([]*domain.NotificationRecord, error) {
	if err := s.requireEvent(ctx, organizerID, eventID); err != nil {
		return nil, err
	}
	if _, err := s.guests.GetGuest(ctx, eventID, guestID); err != nil {
		return nil, err
	}
	return s.notifications.ListByGuest(ctx, eventID, guestID)
}
