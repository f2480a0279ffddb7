package domain

import "time"

// CoupleMessage a free-text note from a guest to the couple
// (couple_messages table).
type CoupleMessage struct {
	ID        int64     `db:"id"`
	EventID   int64     `db:"event_id"`
	GuestID   int64     `db:"guest_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}
