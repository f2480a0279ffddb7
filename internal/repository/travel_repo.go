package repository

import (
	"context"

	"planora/internal/domain"
)

// TravelRepo travel info data access. One row per guest.
type TravelRepo interface {
	GetByGuest(ctx context.Context, guestID int64) (*domain.TravelInfo, error)
	Upsert(ctx context.Context, info *domain.TravelInfo) error

	// CountNeedingTransport counts guests of an event with
	// needs_transportation set.
	CountNeedingTransport(ctx context.Context, eventID int64) (int, error)
}
