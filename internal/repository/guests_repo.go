package repository

import (
	"context"
	"encoding/json"
	"time"

	"planora/internal/domain"
)

// GuestFilters list filters for ListGuests.
type GuestFilters struct {
	RSVPStatus string // exact match on rsvp_status
	Search     string // substring match on name or email
}

// Stage1Fields the guest columns overwritten by a stage-1 RSVP submit.
// Dietary fields are pointers: nil leaves the stored value untouched.
type Stage1Fields struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string

	RSVPStatus   string
	RSVPDate     time.Time
	IsLocalGuest bool

	PlusOne domain.PlusOne

	DietaryRestrictions *string
	Allergies           *string
}

// GuestsRepo guest data access. Every method takes the owning event id;
// a guest id from a different event resolves to ErrNotFound.
type GuestsRepo interface {
	// GetGuest is the tenant isolation point: WHERE id = $guest AND event_id = $event.
	GetGuest(ctx context.Context, eventID, guestID int64) (*domain.Guest, error)

	ListGuests(ctx context.Context, eventID int64, filters GuestFilters, page, size int) ([]*domain.Guest, int, error)

	CreateGuest(ctx context.Context, guest *domain.Guest) (int64, error)
	UpdateGuest(ctx context.Context, guest *domain.Guest) error
	DeleteGuest(ctx context.Context, eventID, guestID int64) error

	// ApplyStage1 overwrites identity, contact and RSVP fields in one statement.
	ApplyStage1(ctx context.Context, eventID, guestID int64, fields Stage1Fields) error

	// AppendNote appends a line to the guest's free-text notes.
	AppendNote(ctx context.Context, eventID, guestID int64, note string) error

	SetAccommodation(ctx context.Context, eventID, guestID int64, needs bool, preference string) error
	SetChildren(ctx context.Context, eventID, guestID int64, count int, details json.RawMessage) error

	// CountByStatus returns rsvp_status -> guest count for an event.
	CountByStatus(ctx context.Context, eventID int64) (map[string]int, error)
}
