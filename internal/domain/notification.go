package domain

import "time"

// Notification outcome values for notification_records.status.
const (
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped"
)

// NotificationRecord outcome journal entry written by the dispatcher
// (notification_records table). Records what was attempted per channel,
// independent of the RSVP write that triggered it.
type NotificationRecord struct {
	ID        int64     `db:"id"`
	EventID   int64     `db:"event_id"`
	GuestID   int64     `db:"guest_id"`
	Channel   string    `db:"channel"` // email/whatsapp
	Template  string    `db:"template"`
	Status    string    `db:"status"` // sent/failed/skipped
	Detail    string    `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}
