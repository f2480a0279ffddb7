package domain

// Notification channels for message_templates.channel and
// notification_records.channel.
const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

// MessageTemplate per-event override of a built-in notification template
// (message_templates table). UNIQUE(event_id, channel, name); a missing
// row falls back to the built-in default.
type MessageTemplate struct {
	ID      int64  `db:"id"`
	EventID int64  `db:"event_id"`
	Channel string `db:"channel"` // email/whatsapp
	Name    string `db:"name"`
	Subject string `db:"subject"` // email only
	Body    string `db:"body"`
}
