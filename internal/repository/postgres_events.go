package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"planora/internal/domain"
)

// PostgresEventsRepo EventsRepo implementation on database/sql.
type PostgresEventsRepo struct {
	db *sql.DB
}

func NewPostgresEventsRepo(db *sql.DB) *PostgresEventsRepo {
	return &PostgresEventsRepo{db: db}
}

var _ EventsRepo = (*PostgresEventsRepo)(nil)

const eventColumns = `
	id,
	organizer_id,
	title,
	COALESCE(couple_names, '') AS couple_names,
	starts_on,
	ends_on,
	COALESCE(location, '') AS location,
	rsvp_deadline,
	COALESCE(email_provider, '') AS email_provider,
	COALESCE(email_api_key, '') AS email_api_key,
	COALESCE(email_domain, '') AS email_domain,
	COALESCE(email_from, '') AS email_from,
	COALESCE(gmail_refresh_token, '') AS gmail_refresh_token,
	COALESCE(whatsapp_phone_id, '') AS whatsapp_phone_id,
	COALESCE(whatsapp_token, '') AS whatsapp_token,
	COALESCE(whatsapp_language, '') AS whatsapp_language,
	COALESCE(metadata, '{}'::jsonb) AS metadata,
	created_at,
	updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*domain.WeddingEvent, error) {
	var ev domain.WeddingEvent
	var deadline sql.NullTime
	var metadata json.RawMessage
	err := row.Scan(
		&ev.ID,
		&ev.OrganizerID,
		&ev.Title,
		&ev.CoupleNames,
		&ev.StartsOn,
		&ev.EndsOn,
		&ev.Location,
		&deadline,
		&ev.Communication.EmailProvider,
		&ev.Communication.EmailAPIKey,
		&ev.Communication.EmailDomain,
		&ev.Communication.EmailFrom,
		&ev.Communication.GmailRefreshToken,
		&ev.Communication.WhatsAppPhoneID,
		&ev.Communication.WhatsAppToken,
		&ev.Communication.WhatsAppLanguage,
		&metadata,
		&ev.CreatedAt,
		&ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		ev.RSVPDeadline = &deadline.Time
	}
	ev.Metadata = metadata
	return &ev, nil
}

func (r *PostgresEventsRepo) GetEvent(ctx context.Context, eventID int64) (*domain.WeddingEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM wedding_events WHERE id = $1`
	ev, err := scanEvent(r.db.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return ev, nil
}

func (r *PostgresEventsRepo) GetEventForOrganizer(ctx context.Context, organizerID, eventID int64) (*domain.WeddingEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM wedding_events WHERE id = $1 AND organizer_id = $2`
	ev, err := scanEvent(r.db.QueryRowContext(ctx, query, eventID, organizerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return ev, nil
}

func (r *PostgresEventsRepo) ListEvents(ctx context.Context, organizerID int64) ([]*domain.WeddingEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM wedding_events WHERE organizer_id = $1 ORDER BY starts_on`
	rows, err := r.db.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.WeddingEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *PostgresEventsRepo) CreateEvent(ctx context.Context, event *domain.WeddingEvent) (int64, error) {
	query := `
		INSERT INTO wedding_events
			(organizer_id, title, couple_names, starts_on, ends_on, location, rsvp_deadline, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, '{}'::jsonb))
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		event.OrganizerID, event.Title, event.CoupleNames,
		event.StartsOn, event.EndsOn, event.Location,
		event.RSVPDeadline, nullJSON(event.Metadata),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create event: %w", err)
	}
	return id, nil
}

func (r *PostgresEventsRepo) UpdateEvent(ctx context.Context, event *domain.WeddingEvent) error {
	query := `
		UPDATE wedding_events SET
			title = $3,
			couple_names = $4,
			starts_on = $5,
			ends_on = $6,
			location = $7,
			rsvp_deadline = $8,
			metadata = COALESCE($9, metadata),
			updated_at = NOW()
		WHERE id = $1 AND organizer_id = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		event.ID, event.OrganizerID,
		event.Title, event.CoupleNames, event.StartsOn, event.EndsOn,
		event.Location, event.RSVPDeadline, nullJSON(event.Metadata),
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return requireRow(res, eventWord(event.ID))
}

func (r *PostgresEventsRepo) UpdateCommunicationSettings(ctx context.Context, eventID int64, settings domain.CommunicationSettings) error {
	query := `
		UPDATE wedding_events SET
			email_provider = $2,
			email_api_key = $3,
			email_domain = $4,
			email_from = $5,
			gmail_refresh_token = $6,
			whatsapp_phone_id = $7,
			whatsapp_token = $8,
			whatsapp_language = $9,
			updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, eventID,
		settings.EmailProvider, settings.EmailAPIKey, settings.EmailDomain,
		settings.EmailFrom, settings.GmailRefreshToken,
		settings.WhatsAppPhoneID, settings.WhatsAppToken, settings.WhatsAppLanguage,
	)
	if err != nil {
		return fmt.Errorf("failed to update communication settings: %w", err)
	}
	return requireRow(res, eventWord(eventID))
}

func eventWord(id int64) string { return fmt.Sprintf("event %d", id) }

// requireRow maps a zero-row UPDATE/DELETE to ErrNotFound.
func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

// nullJSON maps empty JSONB payloads to SQL NULL.
func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
