package repository

import (
	"context"
	"database/sql"
	"fmt"

	"planora/internal/domain"
)

// PostgresTravelRepo TravelRepo implementation on database/sql.
type PostgresTravelRepo struct {
	db *sql.DB
}

func NewPostgresTravelRepo(db *sql.DB) *PostgresTravelRepo {
	return &PostgresTravelRepo{db: db}
}

var _ TravelRepo = (*PostgresTravelRepo)(nil)

func (r *PostgresTravelRepo) GetByGuest(ctx context.Context, guestID int64) (*domain.TravelInfo, error) {
	query := `
		SELECT guest_id, needs_transportation, COALESCE(travel_mode, ''),
		       arrive_at, depart_at, COALESCE(flight_notes, '')
		FROM travel_info WHERE guest_id = $1
	`
	var info domain.TravelInfo
	var arrive, depart sql.NullTime
	err := r.db.QueryRowContext(ctx, query, guestID).Scan(
		&info.GuestID, &info.NeedsTransportation, &info.TravelMode,
		&arrive, &depart, &info.FlightNotes,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("travel info: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get travel info: %w", err)
	}
	if arrive.Valid {
		info.ArriveAt = &arrive.Time
	}
	if depart.Valid {
		info.DepartAt = &depart.Time
	}
	return &info, nil
}

func (r *PostgresTravelRepo) Upsert(ctx context.Context, info *domain.TravelInfo) error {
	return upsertTravelInfo(ctx, r.db, info)
}

func upsertTravelInfo(ctx context.Context, ex execer, info *domain.TravelInfo) error {
	query := `
		INSERT INTO travel_info (guest_id, needs_transportation, travel_mode, arrive_at, depart_at, flight_notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (guest_id)
		DO UPDATE SET
			needs_transportation = EXCLUDED.needs_transportation,
			travel_mode = EXCLUDED.travel_mode,
			arrive_at = EXCLUDED.arrive_at,
			depart_at = EXCLUDED.depart_at,
			flight_notes = EXCLUDED.flight_notes
	`
	if _, err := ex.ExecContext(ctx, query,
		info.GuestID, info.NeedsTransportation, info.TravelMode,
		info.ArriveAt, info.DepartAt, info.FlightNotes,
	); err != nil {
		return fmt.Errorf("failed to upsert travel info: %w", err)
	}
	return nil
}

func (r *PostgresTravelRepo) CountNeedingTransport(ctx context.Context, eventID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM travel_info t
		JOIN guests g ON g.id = t.guest_id
		WHERE g.event_id = $1 AND t.needs_transportation
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transport needs: %w", err)
	}
	return n, nil
}
