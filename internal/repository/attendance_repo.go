package repository

import (
	"context"

	"planora/internal/domain"
)

// AttendanceRepo guest-ceremony attendance and meal selections.
// Both relations are keyed by (guest_id, ceremony_id) and upserted,
// so repeated submissions are row-idempotent.
type AttendanceRepo interface {
	GetGuestCeremony(ctx context.Context, guestID, ceremonyID int64) (*domain.GuestCeremony, error)
	UpsertGuestCeremony(ctx context.Context, gc domain.GuestCeremony) error
	ListGuestCeremonies(ctx context.Context, guestID int64) ([]*domain.GuestCeremony, error)

	// CountAttendingByCeremony returns ceremony_id -> attending count for an event.
	CountAttendingByCeremony(ctx context.Context, eventID int64) (map[int64]int, error)

	UpsertMealSelection(ctx context.Context, ms domain.MealSelection) error
	ListMealSelections(ctx context.Context, guestID int64) ([]*domain.MealSelection, error)

	// CountByMealOption returns meal_option_id -> selection count for an event.
	CountByMealOption(ctx context.Context, eventID int64) (map[int64]int, error)
}
