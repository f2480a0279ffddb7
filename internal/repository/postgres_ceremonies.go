package repository

import (
	"context"
	"database/sql"
	"fmt"

	"planora/internal/domain"
)

// PostgresCeremoniesRepo CeremoniesRepo implementation on database/sql.
type PostgresCeremoniesRepo struct {
	db *sql.DB
}

func NewPostgresCeremoniesRepo(db *sql.DB) *PostgresCeremoniesRepo {
	return &PostgresCeremoniesRepo{db: db}
}

var _ CeremoniesRepo = (*PostgresCeremoniesRepo)(nil)

const ceremonyColumns = `
	id,
	event_id,
	name,
	held_on,
	COALESCE(starts_at, '') AS starts_at,
	COALESCE(ends_at, '') AS ends_at,
	COALESCE(location, '') AS location,
	COALESCE(attire_code, '') AS attire_code`

func scanCeremony(row interface{ Scan(...any) error }) (*domain.Ceremony, error) {
	var c domain.Ceremony
	err := row.Scan(&c.ID, &c.EventID, &c.Name, &c.HeldOn, &c.StartsAt, &c.EndsAt, &c.Location, &c.AttireCode)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCeremoniesRepo) GetCeremony(ctx context.Context, eventID, ceremonyID int64) (*domain.Ceremony, error) {
	query := `SELECT ` + ceremonyColumns + ` FROM ceremonies WHERE id = $1 AND event_id = $2`
	c, err := scanCeremony(r.db.QueryRowContext(ctx, query, ceremonyID, eventID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("ceremony %d: %w", ceremonyID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ceremony: %w", err)
	}
	return c, nil
}

func (r *PostgresCeremoniesRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Ceremony, error) {
	query := `SELECT ` + ceremonyColumns + ` FROM ceremonies WHERE event_id = $1 ORDER BY held_on, starts_at, id`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ceremonies: %w", err)
	}
	defer rows.Close()

	var ceremonies []*domain.Ceremony
	for rows.Next() {
		c, err := scanCeremony(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ceremony: %w", err)
		}
		ceremonies = append(ceremonies, c)
	}
	return ceremonies, rows.Err()
}

func (r *PostgresCeremoniesRepo) CreateCeremony(ctx context.Context, ceremony *domain.Ceremony) (int64, error) {
	query := `
		INSERT INTO ceremonies (event_id, name, held_on, starts_at, ends_at, location, attire_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		ceremony.EventID, ceremony.Name, ceremony.HeldOn,
		ceremony.StartsAt, ceremony.EndsAt, ceremony.Location, ceremony.AttireCode,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create ceremony: %w", err)
	}
	return id, nil
}

func (r *PostgresCeremoniesRepo) UpdateCeremony(ctx context.Context, ceremony *domain.Ceremony) error {
	query := `
		UPDATE ceremonies SET
			name = $3,
			held_on = $4,
			starts_at = $5,
			ends_at = $6,
			location = $7,
			attire_code = $8
		WHERE id = $1 AND event_id = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		ceremony.ID, ceremony.EventID, ceremony.Name, ceremony.HeldOn,
		ceremony.StartsAt, ceremony.EndsAt, ceremony.Location, ceremony.AttireCode,
	)
	if err != nil {
		return fmt.Errorf("failed to update ceremony: %w", err)
	}
	return requireRow(res, fmt.Sprintf("ceremony %d", ceremony.ID))
}

func (r *PostgresCeremoniesRepo) DeleteCeremony(ctx context.Context, eventID, ceremonyID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ceremonies WHERE id = $1 AND event_id = $2`, ceremonyID, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete ceremony: %w", err)
	}
	return requireRow(res, fmt.Sprintf("ceremony %d", ceremonyID))
}

func (r *PostgresCeremoniesRepo) ListMealOptionsByEvent(ctx context.Context, eventID int64) (map[int64][]*domain.MealOption, error) {
	query := `
		SELECT o.id, o.ceremony_id, o.name, COALESCE(o.description, ''), COALESCE(o.vegetarian, FALSE)
		FROM meal_options o
		JOIN ceremonies c ON c.id = o.ceremony_id
		WHERE c.event_id = $1
		ORDER BY o.ceremony_id, o.id
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal options: %w", err)
	}
	defer rows.Close()

	options := map[int64][]*domain.MealOption{}
	for rows.Next() {
		var o domain.MealOption
		if err := rows.Scan(&o.ID, &o.CeremonyID, &o.Name, &o.Description, &o.Vegetarian); err != nil {
			return nil, fmt.Errorf("failed to scan meal option: %w", err)
		}
		options[o.CeremonyID] = append(options[o.CeremonyID], &o)
	}
	return options, rows.Err()
}

func (r *PostgresCeremoniesRepo) CreateMealOption(ctx context.Context, option *domain.MealOption) (int64, error) {
	query := `
		INSERT INTO meal_options (ceremony_id, name, description, vegetarian)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		option.CeremonyID, option.Name, option.Description, option.Vegetarian,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create meal option: %w", err)
	}
	return id, nil
}

func (r *PostgresCeremoniesRepo) DeleteMealOption(ctx context.Context, ceremonyID, optionID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM meal_options WHERE id = $1 AND ceremony_id = $2`, optionID, ceremonyID)
	if err != nil {
		return fmt.Errorf("failed to delete meal option: %w", err)
	}
	return requireRow(res, fmt.Sprintf("meal option %d", optionID))
}
