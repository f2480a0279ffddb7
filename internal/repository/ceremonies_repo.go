package repository

import (
	"context"

	"planora/internal/domain"
)

// CeremoniesRepo ceremony and meal option data access.
type CeremoniesRepo interface {
	// GetCeremony loads a ceremony scoped by event. Mismatch returns ErrNotFound.
	GetCeremony(ctx context.Context, eventID, ceremonyID int64) (*domain.Ceremony, error)

	ListByEvent(ctx context.Context, eventID int64) ([]*domain.Ceremony, error)

	CreateCeremony(ctx context.Context, ceremony *domain.Ceremony) (int64, error)
	UpdateCeremony(ctx context.Context, ceremony *domain.Ceremony) error
	DeleteCeremony(ctx context.Context, eventID, ceremonyID int64) error

	// ListMealOptionsByEvent returns ceremony_id -> options for all
	// ceremonies of an event, for the verify contract.
	ListMealOptionsByEvent(ctx context.Context, eventID int64) (map[int64][]*domain.MealOption, error)

	CreateMealOption(ctx context.Context, option *domain.MealOption) (int64, error)
	DeleteMealOption(ctx context.Context, ceremonyID, optionID int64) error
}
