package repository

import (
	"context"

	"planora/internal/domain"
)

// MessagesRepo couple message data access.
type MessagesRepo interface {
	Create(ctx context.Context, msg *domain.CoupleMessage) (int64, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*domain.CoupleMessage, error)
}

// HotelsRepo hotel and room assignment data access.
type HotelsRepo interface {
	GetHotel(ctx context.Context, eventID, hotelID int64) (*domain.Hotel, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*domain.Hotel, error)
	CreateHotel(ctx context.Context, hotel *domain.Hotel) (int64, error)
	UpdateHotel(ctx context.Context, hotel *domain.Hotel) error
	DeleteHotel(ctx context.Context, eventID, hotelID int64) error

	// Occupancy returns hotel_id -> assigned room count for an event.
	Occupancy(ctx context.Context, eventID int64) (map[int64]int, error)

	CreateAssignment(ctx context.Context, a *domain.RoomAssignment) (int64, error)
	GetAssignmentByGuest(ctx context.Context, eventID, guestID int64) (*domain.RoomAssignment, error)
	ListAssignments(ctx context.Context, eventID int64) ([]*domain.RoomAssignment, error)
}

// TemplatesRepo per-event message template overrides.
type TemplatesRepo interface {
	// Get looks up one template by its natural key. Missing → ErrNotFound
	// (the dispatcher then falls back to the built-in default).
	Get(ctx context.Context, eventID int64, channel, name string) (*domain.MessageTemplate, error)

	ListByEvent(ctx context.Context, eventID int64) ([]*domain.MessageTemplate, error)
	Upsert(ctx context.Context, tpl *domain.MessageTemplate) error
	Delete(ctx context.Context, eventID, templateID int64) error
}

// WizardRepo setup wizard progress, one row per event.
type WizardRepo interface {
	Get(ctx context.Context, eventID int64) (*domain.WizardState, error)
	Save(ctx context.Context, state *domain.WizardState) error
}

// OrganizersRepo organizer account data access.
type OrganizersRepo interface {
	GetByEmail(ctx context.Context, email string) (*domain.Organizer, error)
	GetByID(ctx context.Context, organizerID int64) (*domain.Organizer, error)
	Create(ctx context.Context, org *domain.Organizer) (int64, error)
}

// NotificationsRepo dispatch outcome journal.
type NotificationsRepo interface {
	Record(ctx context.Context, rec *domain.NotificationRecord) error
	ListByGuest(ctx context.Context, eventID, guestID int64) ([]*domain.NotificationRecord, error)
	ListByEvent(ctx context.Context, eventID int64, page, size int) ([]*domain.NotificationRecord, int, error)
}
