package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guestRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "event_id", "first_name", "last_name", "email", "phone",
		"rsvp_status", "rsvp_date",
		"plus_one_confirmed", "plus_one_name", "plus_one_email", "plus_one_phone", "plus_one_gender",
		"is_local_guest", "dietary_restrictions", "allergies", "notes",
		"children_count", "children_details",
		"needs_accommodation", "accommodation_preference",
		"created_at", "updated_at",
	})
}

func TestGetGuestScopedByEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM guests WHERE id = \$1 AND event_id = \$2`).
		WithArgs(int64(42), int64(7)).
		WillReturnRows(guestRows().AddRow(
			42, 7, "Asha", "Rao", "asha@example.com", "+15550001111",
			"confirmed", now,
			false, "", "", "", "",
			false, "", "", "",
			0, []byte("[]"),
			false, "",
			now, now,
		))

	repo := NewPostgresGuestsRepo(db)
	g, err := repo.GetGuest(context.Background(), 7, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), g.ID)
	assert.Equal(t, int64(7), g.EventID)
	assert.Equal(t, "confirmed", g.RSVPStatus)
	require.NotNil(t, g.RSVPDate)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetGuestWrongEventIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Guest 42 exists but under another event: the scoped query returns
	// no rows and the caller sees a plain not-found.
	mock.ExpectQuery(`SELECT .+ FROM guests WHERE id = \$1 AND event_id = \$2`).
		WithArgs(int64(42), int64(99)).
		WillReturnRows(guestRows())

	repo := NewPostgresGuestsRepo(db)
	_, err = repo.GetGuest(context.Background(), 99, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyStage1MissingGuestIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE guests SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresGuestsRepo(db)
	err = repo.ApplyStage1(context.Background(), 7, 42, Stage1Fields{
		FirstName: "Asha", LastName: "Rao", Email: "asha@example.com",
		RSVPStatus: "confirmed", RSVPDate: time.Now(),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT rsvp_status, COUNT\(\*\) FROM guests WHERE event_id = \$1 GROUP BY rsvp_status`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"rsvp_status", "count"}).
			AddRow("pending", 4).
			AddRow("confirmed", 10).
			AddRow("declined", 2))

	repo := NewPostgresGuestsRepo(db)
	counts, err := repo.CountByStatus(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"pending": 4, "confirmed": 10, "declined": 2}, counts)

	require.NoError(t, mock.ExpectationsWereMet())
}
