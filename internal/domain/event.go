package domain

import (
	"encoding/json"
	"time"
)

// Email provider identifiers stored on wedding_events.email_provider.
const (
	EmailProviderNone     = ""
	EmailProviderSendGrid = "sendgrid"
	EmailProviderMailgun  = "mailgun"
	EmailProviderGmail    = "gmail"
)

// CommunicationSettings per-event provider credentials.
// Credentials are never serialized to guest-facing responses.
type CommunicationSettings struct {
	EmailProvider     string `db:"email_provider" json:"emailProvider"`
	EmailAPIKey       string `db:"email_api_key" json:"emailApiKey,omitempty"`
	EmailDomain       string `db:"email_domain" json:"emailDomain,omitempty"`
	EmailFrom         string `db:"email_from" json:"emailFrom,omitempty"`
	GmailRefreshToken string `db:"gmail_refresh_token" json:"-"`
	WhatsAppPhoneID   string `db:"whatsapp_phone_id" json:"whatsappPhoneId,omitempty"`
	WhatsAppToken     string `db:"whatsapp_token" json:"-"`
	WhatsAppLanguage  string `db:"whatsapp_language" json:"whatsappLanguage,omitempty"`
}

// EmailConfigured reports whether the event can send email.
func (c CommunicationSettings) EmailConfigured() bool {
	switch c.EmailProvider {
	case EmailProviderSendGrid:
		return c.EmailAPIKey != "" && c.EmailFrom != ""
	case EmailProviderMailgun:
		return c.EmailAPIKey != "" && c.EmailDomain != "" && c.EmailFrom != ""
	case EmailProviderGmail:
		return c.GmailRefreshToken != "" && c.EmailFrom != ""
	}
	return false
}

// WhatsAppConfigured reports whether the event can send WhatsApp messages.
func (c CommunicationSettings) WhatsAppConfigured() bool {
	return c.WhatsAppPhoneID != "" && c.WhatsAppToken != ""
}

// WeddingEvent wedding event domain model (wedding_events table).
// Owns guests, ceremonies, hotels and message templates.
type WeddingEvent struct {
	ID          int64  `db:"id"`
	OrganizerID int64  `db:"organizer_id"`
	Title       string `db:"title"`
	CoupleNames string `db:"couple_names"`

	StartsOn     time.Time  `db:"starts_on"`
	EndsOn       time.Time  `db:"ends_on"`
	Location     string     `db:"location"`
	RSVPDeadline *time.Time `db:"rsvp_deadline"`

	Communication CommunicationSettings

	Metadata  json.RawMessage `db:"metadata"` // JSONB, nullable
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}
