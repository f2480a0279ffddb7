package repository

import (
	"context"
	"database/sql"
	"fmt"

	"planora/internal/domain"
)

// PostgresHotelsRepo HotelsRepo implementation on database/sql.
type PostgresHotelsRepo struct {
	db *sql.DB
}

func NewPostgresHotelsRepo(db *sql.DB) *PostgresHotelsRepo {
	return &PostgresHotelsRepo{db: db}
}

var _ HotelsRepo = (*PostgresHotelsRepo)(nil)

const hotelColumns = `id, event_id, name, COALESCE(address, ''), COALESCE(room_count, 0), COALESCE(notes, '')`

func (r *PostgresHotelsRepo) GetHotel(ctx context.Context, eventID, hotelID int64) (*domain.Hotel, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE id = $1 AND event_id = $2`
	var h domain.Hotel
	err := r.db.QueryRowContext(ctx, query, hotelID, eventID).Scan(
		&h.ID, &h.EventID, &h.Name, &h.Address, &h.RoomCount, &h.Notes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("hotel %d: %w", hotelID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get hotel: %w", err)
	}
	return &h, nil
}

func (r *PostgresHotelsRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Hotel, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE event_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	defer rows.Close()

	var hotels []*domain.Hotel
	for rows.Next() {
		var h domain.Hotel
		if err := rows.Scan(&h.ID, &h.EventID, &h.Name, &h.Address, &h.RoomCount, &h.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		hotels = append(hotels, &h)
	}
	return hotels, rows.Err()
}

func (r *PostgresHotelsRepo) CreateHotel(ctx context.Context, hotel *domain.Hotel) (int64, error) {
	query := `
		INSERT INTO hotels (event_id, name, address, room_count, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		hotel.EventID, hotel.Name, hotel.Address, hotel.RoomCount, hotel.Notes).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create hotel: %w", err)
	}
	return id, nil
}

func (r *PostgresHotelsRepo) UpdateHotel(ctx context.Context, hotel *domain.Hotel) error {
	query := `
		UPDATE hotels SET name = $3, address = $4, room_count = $5, notes = $6
		WHERE id = $1 AND event_id = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		hotel.ID, hotel.EventID, hotel.Name, hotel.Address, hotel.RoomCount, hotel.Notes)
	if err != nil {
		return fmt.Errorf("failed to update hotel: %w", err)
	}
	return requireRow(res, fmt.Sprintf("hotel %d", hotel.ID))
}

func (r *PostgresHotelsRepo) DeleteHotel(ctx context.Context, eventID, hotelID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM hotels WHERE id = $1 AND event_id = $2`, hotelID, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete hotel: %w", err)
	}
	return requireRow(res, fmt.Sprintf("hotel %d", hotelID))
}

func (r *PostgresHotelsRepo) Occupancy(ctx context.Context, eventID int64) (map[int64]int, error) {
	query := `SELECT hotel_id, COUNT(*) FROM room_assignments WHERE event_id = $1 GROUP BY hotel_id`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count occupancy: %w", err)
	}
	defer rows.Close()

	counts := map[int64]int{}
	for rows.Next() {
		var hotelID int64
		var n int
		if err := rows.Scan(&hotelID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan occupancy: %w", err)
		}
		counts[hotelID] = n
	}
	return counts, rows.Err()
}

func (r *PostgresHotelsRepo) CreateAssignment(ctx context.Context, a *domain.RoomAssignment) (int64, error) {
	query := `
		INSERT INTO room_assignments (event_id, guest_id, hotel_id, room_number, early_check_in)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		a.EventID, a.GuestID, a.HotelID, a.RoomNumber, a.EarlyCheckIn).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create room assignment: %w", err)
	}
	return id, nil
}

func (r *PostgresHotelsRepo) GetAssignmentByGuest(ctx context.Context, eventID, guestID int64) (*domain.RoomAssignment, error) {
	query := `
		SELECT id, event_id, guest_id, hotel_id, room_number, early_check_in, created_at
		FROM room_assignments WHERE event_id = $1 AND guest_id = $2
	`
	var a domain.RoomAssignment
	err := r.db.QueryRowContext(ctx, query, eventID, guestID).Scan(
		&a.ID, &a.EventID, &a.GuestID, &a.HotelID, &a.RoomNumber, &a.EarlyCheckIn, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("room assignment: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get room assignment: %w", err)
	}
	return &a, nil
}

func (r *PostgresHotelsRepo) ListAssignments(ctx context.Context, eventID int64) ([]*domain.RoomAssignment, error) {
	query := `
		SELECT id, event_id, guest_id, hotel_id, room_number, early_check_in, created_at
		FROM room_assignments WHERE event_id = $1 ORDER BY hotel_id, room_number
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list room assignments: %w", err)
	}
	defer rows.Close()

	var list []*domain.RoomAssignment
	for rows.Next() {
		var a domain.RoomAssignment
		if err := rows.Scan(&a.ID, &a.EventID, &a.GuestID, &a.HotelID, &a.RoomNumber, &a.EarlyCheckIn, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room assignment: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
