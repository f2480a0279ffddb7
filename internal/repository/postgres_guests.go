package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"planora/internal/domain"
)

// PostgresGuestsRepo GuestsRepo implementation on database/sql.
type PostgresGuestsRepo struct {
	db *sql.DB
}

func NewPostgresGuestsRepo(db *sql.DB) *PostgresGuestsRepo {
	return &PostgresGuestsRepo{db: db}
}

var _ GuestsRepo = (*PostgresGuestsRepo)(nil)

const guestColumns = `
	id,
	event_id,
	COALESCE(first_name, '') AS first_name,
	COALESCE(last_name, '') AS last_name,
	COALESCE(email, '') AS email,
	COALESCE(phone, '') AS phone,
	COALESCE(rsvp_status, 'pending') AS rsvp_status,
	rsvp_date,
	COALESCE(plus_one_confirmed, FALSE) AS plus_one_confirmed,
	COALESCE(plus_one_name, '') AS plus_one_name,
	COALESCE(plus_one_email, '') AS plus_one_email,
	COALESCE(plus_one_phone, '') AS plus_one_phone,
	COALESCE(plus_one_gender, '') AS plus_one_gender,
	COALESCE(is_local_guest, FALSE) AS is_local_guest,
	COALESCE(dietary_restrictions, '') AS dietary_restrictions,
	COALESCE(allergies, '') AS allergies,
	COALESCE(notes, '') AS notes,
	COALESCE(children_count, 0) AS children_count,
	COALESCE(children_details, '[]'::jsonb) AS children_details,
	COALESCE(needs_accommodation, FALSE) AS needs_accommodation,
	COALESCE(accommodation_preference, '') AS accommodation_preference,
	created_at,
	updated_at`

func scanGuest(row interface{ Scan(...any) error }) (*domain.Guest, error) {
	var g domain.Guest
	var rsvpDate sql.NullTime
	var children json.RawMessage
	err := row.Scan(
		&g.ID,
		&g.EventID,
		&g.FirstName,
		&g.LastName,
		&g.Email,
		&g.Phone,
		&g.RSVPStatus,
		&rsvpDate,
		&g.PlusOne.Confirmed,
		&g.PlusOne.Name,
		&g.PlusOne.Email,
		&g.PlusOne.Phone,
		&g.PlusOne.Gender,
		&g.IsLocalGuest,
		&g.DietaryRestrictions,
		&g.Allergies,
		&g.Notes,
		&g.ChildrenCount,
		&children,
		&g.NeedsAccommodation,
		&g.AccommodationPreference,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if rsvpDate.Valid {
		g.RSVPDate = &rsvpDate.Time
	}
	g.ChildrenDetails = children
	return &g, nil
}

func (r *PostgresGuestsRepo) GetGuest(ctx context.Context, eventID, guestID int64) (*domain.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1 AND event_id = $2`
	g, err := scanGuest(r.db.QueryRowContext(ctx, query, guestID, eventID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("guest %d: %w", guestID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get guest: %w", err)
	}
	return g, nil
}

func (r *PostgresGuestsRepo) ListGuests(ctx context.Context, eventID int64, filters GuestFilters, page, size int) ([]*domain.Guest, int, error) {
	where := []string{"event_id = $1"}
	args := []any{eventID}
	if filters.RSVPStatus != "" {
		args = append(args, filters.RSVPStatus)
		where = append(where, fmt.Sprintf("rsvp_status = $%d", len(args)))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)",
			len(args), len(args), len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM guests WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count guests: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 50
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(`SELECT %s FROM guests WHERE %s ORDER BY last_name, first_name, id LIMIT $%d OFFSET $%d`,
		guestColumns, cond, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list guests: %w", err)
	}
	defer rows.Close()

	var guests []*domain.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan guest: %w", err)
		}
		guests = append(guests, g)
	}
	return guests, total, rows.Err()
}

func (r *PostgresGuestsRepo) CreateGuest(ctx context.Context, guest *domain.Guest) (int64, error) {
	query := `
		INSERT INTO guests
			(event_id, first_name, last_name, email, phone, rsvp_status,
			 is_local_guest, dietary_restrictions, allergies, notes,
			 children_count, children_details)
		VALUES ($1, $2, $3, $4, $5, COALESCE(NULLIF($6, ''), 'pending'),
		        $7, $8, $9, $10, $11, COALESCE($12, '[]'::jsonb))
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		guest.EventID, guest.FirstName, guest.LastName, guest.Email, guest.Phone,
		guest.RSVPStatus, guest.IsLocalGuest, guest.DietaryRestrictions,
		guest.Allergies, guest.Notes, guest.ChildrenCount, nullJSON(guest.ChildrenDetails),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create guest: %w", err)
	}
	return id, nil
}

func (r *PostgresGuestsRepo) UpdateGuest(ctx context.Context, guest *domain.Guest) error {
	query := `
		UPDATE guests SET
			first_name = $3,
			last_name = $4,
			email = $5,
			phone = $6,
			rsvp_status = $7,
			plus_one_confirmed = $8,
			plus_one_name = $9,
			plus_one_email = $10,
			plus_one_phone = $11,
			plus_one_gender = $12,
			is_local_guest = $13,
			dietary_restrictions = $14,
			allergies = $15,
			notes = $16,
			children_count = $17,
			children_details = COALESCE($18, children_details),
			needs_accommodation = $19,
			accommodation_preference = $20,
			updated_at = NOW()
		WHERE id = $1 AND event_id = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		guest.ID, guest.EventID,
		guest.FirstName, guest.LastName, guest.Email, guest.Phone, guest.RSVPStatus,
		guest.PlusOne.Confirmed, guest.PlusOne.Name, guest.PlusOne.Email,
		guest.PlusOne.Phone, guest.PlusOne.Gender,
		guest.IsLocalGuest, guest.DietaryRestrictions, guest.Allergies, guest.Notes,
		guest.ChildrenCount, nullJSON(guest.ChildrenDetails),
		guest.NeedsAccommodation, guest.AccommodationPreference,
	)
	if err != nil {
		return fmt.Errorf("failed to update guest: %w", err)
	}
	return requireRow(res, guestWord(guest.ID))
}

func (r *PostgresGuestsRepo) DeleteGuest(ctx context.Context, eventID, guestID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM guests WHERE id = $1 AND event_id = $2`, guestID, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete guest: %w", err)
	}
	return requireRow(res, guestWord(guestID))
}

func (r *PostgresGuestsRepo) ApplyStage1(ctx context.Context, eventID, guestID int64, fields Stage1Fields) error {
	return applyStage1(ctx, r.db, eventID, guestID, fields)
}

// applyStage1 is shared with the stage-2 transaction runner.
func applyStage1(ctx context.Context, ex execer, eventID, guestID int64, fields Stage1Fields) error {
	query := `
		UPDATE guests SET
			first_name = $3,
			last_name = $4,
			email = $5,
			phone = COALESCE(NULLIF($6, ''), phone),
			rsvp_status = $7,
			rsvp_date = $8,
			is_local_guest = $9,
			plus_one_confirmed = $10,
			plus_one_name = $11,
			plus_one_email = $12,
			plus_one_phone = $13,
			plus_one_gender = $14,
			dietary_restrictions = COALESCE($15, dietary_restrictions),
			allergies = COALESCE($16, allergies),
			updated_at = NOW()
		WHERE id = $1 AND event_id = $2
	`
	res, err := ex.ExecContext(ctx, query,
		guestID, eventID,
		fields.FirstName, fields.LastName, fields.Email, fields.Phone,
		fields.RSVPStatus, fields.RSVPDate, fields.IsLocalGuest,
		fields.PlusOne.Confirmed, fields.PlusOne.Name, fields.PlusOne.Email,
		fields.PlusOne.Phone, fields.PlusOne.Gender,
		fields.DietaryRestrictions, fields.Allergies,
	)
	if err != nil {
		return fmt.Errorf("failed to apply stage1 fields: %w", err)
	}
	return requireRow(res, guestWord(guestID))
}

func (r *PostgresGuestsRepo) AppendNote(ctx context.Context, eventID, guestID int64, note string) error {
	return appendGuestNote(ctx, r.db, eventID, guestID, note)
}

func appendGuestNote(ctx context.Context, ex execer, eventID, guestID int64, note string) error {
	query := `
		UPDATE guests SET
			notes = CASE WHEN COALESCE(notes, '') = '' THEN $3
			             ELSE notes || E'\n' || $3 END,
			updated_at = NOW()
		WHERE id = $1 AND event_id = $2
	`
	res, err := ex.ExecContext(ctx, query, guestID, eventID, note)
	if err != nil {
		return fmt.Errorf("failed to append guest note: %w", err)
	}
	return requireRow(res, guestWord(guestID))
}

func (r *PostgresGuestsRepo) SetAccommodation(ctx context.Context, eventID, guestID int64, needs bool, preference string) error {
	return setAccommodation(ctx, r.db, eventID, guestID, needs, preference)
}

func setAccommodation(ctx context.Context, ex execer, eventID, guestID int64, needs bool, preference string) error {
	query := `
		UPDATE guests SET
			needs_accommodation = $3,
			accommodation_preference = $4,
			updated_at = NOW()
		WHERE id = $1 AND event_id = $2
	`
	res, err := ex.ExecContext(ctx, query, guestID, eventID, needs, preference)
	if err != nil {
		return fmt.Errorf("failed to set accommodation: %w", err)
	}
	return requireRow(res, guestWord(guestID))
}

func (r *PostgresGuestsRepo) SetChildren(ctx context.Context, eventID, guestID int64, count int, details json.RawMessage) error {
	return setChildren(ctx, r.db, eventID, guestID, count, details)
}

func setChildren(ctx context.Context, ex execer, eventID, guestID int64, count int, details json.RawMessage) error {
	query := `
		UPDATE guests SET
			children_count = $3,
			children_details = COALESCE($4, '[]'::jsonb),
			updated_at = NOW()
		WHERE id = $1 AND event_id = $2
	`
	res, err := ex.ExecContext(ctx, query, guestID, eventID, count, nullJSON(details))
	if err != nil {
		return fmt.Errorf("failed to set children: %w", err)
	}
	return requireRow(res, guestWord(guestID))
}

func (r *PostgresGuestsRepo) CountByStatus(ctx context.Context, eventID int64) (map[string]int, error) {
	query := `SELECT rsvp_status, COUNT(*) FROM guests WHERE event_id = $1 GROUP BY rsvp_status`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count guests by status: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func guestWord(id int64) string { return fmt.Sprintf("guest %d", id) }

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
