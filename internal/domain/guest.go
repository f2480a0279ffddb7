package domain

import (
	"encoding/json"
	"time"
)

// RSVP status values for guests.rsvp_status.
const (
	RSVPPending   = "pending"
	RSVPConfirmed = "confirmed"
	RSVPDeclined  = "declined"
)

// Accommodation preference values for guests.accommodation_preference.
const (
	AccommodationNone        = ""
	AccommodationSelfManaged = "self_managed"
	AccommodationProvided    = "provided"
)

// PlusOne companion block embedded in Guest.
type PlusOne struct {
	Confirmed bool   `db:"plus_one_confirmed" json:"confirmed"`
	Name      string `db:"plus_one_name" json:"name,omitempty"`
	Email     string `db:"plus_one_email" json:"email,omitempty"`
	Phone     string `db:"plus_one_phone" json:"phone,omitempty"`
	Gender    string `db:"plus_one_gender" json:"gender,omitempty"`
}

// Guest guest domain model (guests table).
// A guest belongs to exactly one wedding event; every lookup and mutation
// is keyed by (event_id, guest_id) so a cross-event id never resolves.
type Guest struct {
	ID      int64 `db:"id"`
	EventID int64 `db:"event_id"`

	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`

	RSVPStatus string     `db:"rsvp_status"` // pending/confirmed/declined
	RSVPDate   *time.Time `db:"rsvp_date"`

	PlusOne PlusOne

	IsLocalGuest        bool   `db:"is_local_guest"`
	DietaryRestrictions string `db:"dietary_restrictions"`
	Allergies           string `db:"allergies"`
	Notes               string `db:"notes"` // append-only free text

	ChildrenCount   int             `db:"children_count"`
	ChildrenDetails json.RawMessage `db:"children_details"` // JSONB, nullable

	NeedsAccommodation      bool   `db:"needs_accommodation"`
	AccommodationPreference string `db:"accommodation_preference"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// FullName joined display name.
func (g *Guest) FullName() string {
	if g.FirstName == "" {
		return g.LastName
	}
	if g.LastName == "" {
		return g.FirstName
	}
	return g.FirstName + " " + g.LastName
}

// ChildDetail one entry of the guests.children_details JSONB list.
type ChildDetail struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}
