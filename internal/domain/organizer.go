package domain

import "time"

// Organizer admin account domain model (organizers table).
type Organizer struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"` // unique, lowercased
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"` // sha256(lower(email) + ":" + password), hex
	CreatedAt    time.Time `db:"created_at"`
}
