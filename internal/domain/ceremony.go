package domain

import "time"

// Ceremony one sub-event within a wedding event (ceremonies table).
type Ceremony struct {
	ID      int64 `db:"id"`
	EventID int64 `db:"event_id"`

	Name       string    `db:"name"`
	HeldOn     time.Time `db:"held_on"` // DATE
	StartsAt   string    `db:"starts_at"` // "15:04" wall-clock
	EndsAt     string    `db:"ends_at"`
	Location   string    `db:"location"`
	AttireCode string    `db:"attire_code"`
}

// MealOption one selectable meal for a ceremony (meal_options table).
type MealOption struct {
	ID          int64  `db:"id"`
	CeremonyID  int64  `db:"ceremony_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Vegetarian  bool   `db:"vegetarian"`
}

// GuestCeremony per-guest attendance intent for one ceremony
// (guest_ceremonies table). UNIQUE(guest_id, ceremony_id): upserted,
// never duplicated.
type GuestCeremony struct {
	GuestID    int64 `db:"guest_id"`
	CeremonyID int64 `db:"ceremony_id"`
	Attending  bool  `db:"attending"`
}

// MealSelection per-guest meal choice for one ceremony
// (meal_selections table). Same upsert-by-pair invariant as GuestCeremony.
type MealSelection struct {
	GuestID      int64 `db:"guest_id"`
	CeremonyID   int64 `db:"ceremony_id"`
	MealOptionID int64 `db:"meal_option_id"`
}
