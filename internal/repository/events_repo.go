package repository

import (
	"context"

	"planora/internal/domain"
)

// EventsRepo wedding event data access.
type EventsRepo interface {
	// GetEvent loads an event by id.
	GetEvent(ctx context.Context, eventID int64) (*domain.WeddingEvent, error)

	// GetEventForOrganizer loads an event only if it belongs to the
	// organizer. Mismatch returns ErrNotFound.
	GetEventForOrganizer(ctx context.Context, organizerID, eventID int64) (*domain.WeddingEvent, error)

	// ListEvents lists all events owned by an organizer.
	ListEvents(ctx context.Context, organizerID int64) ([]*domain.WeddingEvent, error)

	CreateEvent(ctx context.Context, event *domain.WeddingEvent) (int64, error)
	UpdateEvent(ctx context.Context, event *domain.WeddingEvent) error

	// UpdateCommunicationSettings replaces the provider block only.
	UpdateCommunicationSettings(ctx context.Context, eventID int64, settings domain.CommunicationSettings) error
}
