package domain

import "time"

// Hotel accommodation block reserved for an event (hotels table).
type Hotel struct {
	ID        int64  `db:"id"`
	EventID   int64  `db:"event_id"`
	Name      string `db:"name"`
	Address   string `db:"address"`
	RoomCount int    `db:"room_count"`
	Notes     string `db:"notes"`
}

// RoomAssignment one guest placed in one hotel room (room_assignments table).
// UNIQUE(event_id, guest_id): a guest holds at most one assignment per event.
type RoomAssignment struct {
	ID           int64     `db:"id"`
	EventID      int64     `db:"event_id"`
	GuestID      int64     `db:"guest_id"`
	HotelID      int64     `db:"hotel_id"`
	RoomNumber   string    `db:"room_number"`
	EarlyCheckIn bool      `db:"early_check_in"`
	CreatedAt    time.Time `db:"created_at"`
}
