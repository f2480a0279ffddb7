package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRSVPRepo RSVPRepo implementation: one transaction per stage-2
// submit so a failure partway rolls back all of it.
type PostgresRSVPRepo struct {
	db *sql.DB
}

func NewPostgresRSVPRepo(db *sql.DB) *PostgresRSVPRepo {
	return &PostgresRSVPRepo{db: db}
}

var _ RSVPRepo = (*PostgresRSVPRepo)(nil)

func (r *PostgresRSVPRepo) ApplyStage2(ctx context.Context, eventID, guestID int64, changes Stage2Changes) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin stage2 tx: %w", err)
	}
	defer tx.Rollback()

	if changes.Accommodation != nil {
		if err := setAccommodation(ctx, tx, eventID, guestID,
			changes.Accommodation.Needs, changes.Accommodation.Preference); err != nil {
			return err
		}
	}
	if changes.Travel != nil {
		changes.Travel.GuestID = guestID
		if err := upsertTravelInfo(ctx, tx, changes.Travel); err != nil {
			return err
		}
	}
	if changes.Children != nil {
		if err := setChildren(ctx, tx, eventID, guestID,
			changes.Children.Count, changes.Children.Details); err != nil {
			return err
		}
	}
	for _, ms := range changes.MealSelections {
		ms.GuestID = guestID
		if err := upsertMealSelection(ctx, tx, ms); err != nil {
			return err
		}
	}
	for _, note := range changes.Notes {
		if err := appendGuestNote(ctx, tx, eventID, guestID, note); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stage2 tx: %w", err)
	}
	return nil
}
