package repository

import (
	"context"
	"database/sql"
	"fmt"

	"planora/internal/domain"
)

// PostgresAttendanceRepo AttendanceRepo implementation on database/sql.
type PostgresAttendanceRepo struct {
	db *sql.DB
}

func NewPostgresAttendanceRepo(db *sql.DB) *PostgresAttendanceRepo {
	return &PostgresAttendanceRepo{db: db}
}

var _ AttendanceRepo = (*PostgresAttendanceRepo)(nil)

func (r *PostgresAttendanceRepo) GetGuestCeremony(ctx context.Context, guestID, ceremonyID int64) (*domain.GuestCeremony, error) {
	query := `SELECT guest_id, ceremony_id, attending FROM guest_ceremonies WHERE guest_id = $1 AND ceremony_id = $2`
	var gc domain.GuestCeremony
	err := r.db.QueryRowContext(ctx, query, guestID, ceremonyID).Scan(&gc.GuestID, &gc.CeremonyID, &gc.Attending)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("guest ceremony: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get guest ceremony: %w", err)
	}
	return &gc, nil
}

func (r *PostgresAttendanceRepo) UpsertGuestCeremony(ctx context.Context, gc domain.GuestCeremony) error {
	return upsertGuestCeremony(ctx, r.db, gc)
}

// Upsert by natural key keeps repeated submissions to one row per pair.
func upsertGuestCeremony(ctx context.Context, ex execer, gc domain.GuestCeremony) error {
	query := `
		INSERT INTO guest_ceremonies (guest_id, ceremony_id, attending)
		VALUES ($1, $2, $3)
		ON CONFLICT (guest_id, ceremony_id)
		DO UPDATE SET attending = EXCLUDED.attending
	`
	if _, err := ex.ExecContext(ctx, query, gc.GuestID, gc.CeremonyID, gc.Attending); err != nil {
		return fmt.Errorf("failed to upsert guest ceremony: %w", err)
	}
	return nil
}

func (r *PostgresAttendanceRepo) ListGuestCeremonies(ctx context.Context, guestID int64) ([]*domain.GuestCeremony, error) {
	query := `SELECT guest_id, ceremony_id, attending FROM guest_ceremonies WHERE guest_id = $1 ORDER BY ceremony_id`
	rows, err := r.db.QueryContext(ctx, query, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guest ceremonies: %w", err)
	}
	defer rows.Close()

	var list []*domain.GuestCeremony
	for rows.Next() {
		var gc domain.GuestCeremony
		if err := rows.Scan(&gc.GuestID, &gc.CeremonyID, &gc.Attending); err != nil {
			return nil, fmt.Errorf("failed to scan guest ceremony: %w", err)
		}
		list = append(list, &gc)
	}
	return list, rows.Err()
}

func (r *PostgresAttendanceRepo) CountAttendingByCeremony(ctx context.Context, eventID int64) (map[int64]int, error) {
	query := `
		SELECT gc.ceremony_id, COUNT(*)
		FROM guest_ceremonies gc
		JOIN ceremonies c ON c.id = gc.ceremony_id
		WHERE c.event_id = $1 AND gc.attending
		GROUP BY gc.ceremony_id
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance: %w", err)
	}
	defer rows.Close()

	counts := map[int64]int{}
	for rows.Next() {
		var ceremonyID int64
		var n int
		if err := rows.Scan(&ceremonyID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan attendance count: %w", err)
		}
		counts[ceremonyID] = n
	}
	return counts, rows.Err()
}

func (r *PostgresAttendanceRepo) UpsertMealSelection(ctx context.Context, ms domain.MealSelection) error {
	return upsertMealSelection(ctx, r.db, ms)
}

func upsertMealSelection(ctx context.Context, ex execer, ms domain.MealSelection) error {
	query := `
		INSERT INTO meal_selections (guest_id, ceremony_id, meal_option_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (guest_id, ceremony_id)
		DO UPDATE SET meal_option_id = EXCLUDED.meal_option_id
	`
	if _, err := ex.ExecContext(ctx, query, ms.GuestID, ms.CeremonyID, ms.MealOptionID); err != nil {
		return fmt.Errorf("failed to upsert meal selection: %w", err)
	}
	return nil
}

func (r *PostgresAttendanceRepo) ListMealSelections(ctx context.Context, guestID int64) ([]*domain.MealSelection, error) {
	query := `SELECT guest_id, ceremony_id, meal_option_id FROM meal_selections WHERE guest_id = $1 ORDER BY ceremony_id`
	rows, err := r.db.QueryContext(ctx, query, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal selections: %w", err)
	}
	defer rows.Close()

	var list []*domain.MealSelection
	for rows.Next() {
		var ms domain.MealSelection
		if err := rows.Scan(&ms.GuestID, &ms.CeremonyID, &ms.MealOptionID); err != nil {
			return nil, fmt.Errorf("failed to scan meal selection: %w", err)
		}
		list = append(list, &ms)
	}
	return list, rows.Err()
}

func (r *PostgresAttendanceRepo) CountByMealOption(ctx context.Context, eventID int64) (map[int64]int, error) {
	query := `
		SELECT ms.meal_option_id, COUNT(*)
		FROM meal_selections ms
		JOIN ceremonies c ON c.id = ms.ceremony_id
		WHERE c.event_id = $1
		GROUP BY ms.meal_option_id
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count meal selections: %w", err)
	}
	defer rows.Close()

	counts := map[int64]int{}
	for rows.Next() {
		var optionID int64
		var n int
		if err := rows.Scan(&optionID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan meal count: %w", err)
		}
		counts[optionID] = n
	}
	return counts, rows.Err()
}
