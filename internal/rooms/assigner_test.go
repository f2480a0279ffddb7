package rooms

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"planora/internal/domain"
	"planora/internal/repository"
)

type assignerFixture struct {
	assigner *Assigner
	mem      *repository.Memory
	eventID  int64
}

func newFixture(t *testing.T) *assignerFixture {
	t.Helper()
	mem := repository.NewMemory()
	ctx := context.Background()

	eventID, err := mem.Events.CreateEvent(ctx, &domain.WeddingEvent{
		Title:       "Anna & Ben's Wedding",
		CoupleNames: "Anna & Ben",
		StartsOn:    time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		EndsOn:      time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	a := NewAssigner(mem.Events, mem.Guests, mem.Travel, mem.Hotels, zap.NewNop())
	return &assignerFixture{assigner: a, mem: mem, eventID: eventID}
}

func (f *assignerFixture) addHotel(t *testing.T, name string, rooms int) int64 {
	t.Helper()
	id, err := f.mem.Hotels.CreateHotel(context.Background(), &domain.Hotel{
		EventID:   f.eventID,
		Name:      name,
		RoomCount: rooms,
	})
	require.NoError(t, err)
	return id
}

func (f *assignerFixture) addGuest(t *testing.T, preference string) int64 {
	t.Helper()
	id, err := f.mem.Guests.CreateGuest(context.Background(), &domain.Guest{
		EventID:                 f.eventID,
		FirstName:               "Maria",
		LastName:                "Silva",
		RSVPStatus:              domain.RSVPConfirmed,
		NeedsAccommodation:      preference != domain.AccommodationNone,
		AccommodationPreference: preference,
	})
	require.NoError(t, err)
	return id
}

func TestAssignFirstFreeRoom(t *testing.T) {
	f := newFixture(t)
	hotelID := f.addHotel(t, "Grand Plaza", 2)
	guestID := f.addGuest(t, domain.AccommodationProvided)

	outcome, err := f.assigner.ProcessForGuest(context.Background(), f.eventID, guestID)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "Grand Plaza, room 1", outcome.Message)

	a, err := f.mem.Hotels.GetAssignmentByGuest(context.Background(), f.eventID, guestID)
	require.NoError(t, err)
	assert.Equal(t, hotelID, a.HotelID)
	assert.Equal(t, "1", a.RoomNumber)
}

func TestAssignIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addHotel(t, "Grand Plaza", 2)
	guestID := f.addGuest(t, domain.AccommodationProvided)

	first, err := f.assigner.ProcessForGuest(context.Background(), f.eventID, guestID)
	require.NoError(t, err)
	second, err := f.assigner.ProcessForGuest(context.Background(), f.eventID, guestID)
	require.NoError(t, err)

	assert.Equal(t, first.Message, second.Message)
	assignments, err := f.mem.Hotels.ListAssignments(context.Background(), f.eventID)
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
}

func TestAssignOverflowsToNextHotel(t *testing.T) {
	f := newFixture(t)
	f.addHotel(t, "Grand Plaza", 1)
	f.addHotel(t, "Riverside Inn", 1)

	first := f.addGuest(t, domain.AccommodationProvided)
	second := f.addGuest(t, domain.AccommodationProvided)

	out1, err := f.assigner.ProcessForGuest(context.Background(), f.eventID, first)
	require.NoError(t, err)
	assert.Equal(t, "Grand Plaza, room 1", out1.Message)

	out2, err := f.assigner.ProcessForGuest(context.Background(), f.eventID, second)
	require.NoError(t, err)
	assert.Equal(t, "Riverside Inn, room 1", out2.Message)
}

func TestAssignAllHotelsFull(t *testing.T) {
	f := newFixture(t)
	f.addHotel(t, "Grand Plaza", 1)
	first := f.addGuest(t, domain.AccommodationProvided)
	second := f.addGuest(t, domain.AccommodationProvided)

	_, err := f.assigner.ProcessForGuest(context.Background(), f.eventID, first)
	require.NoError(t, err)

	outcome, err := f.assigner.ProcessForGuest(context.Background(), f.eventID, second)
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, "no rooms available", outcome.Message)
}

func TestAssignSkipsSelfManagedGuest(t *testing.T) {
	f := newFixture(t)
	f.addHotel(t, "Grand Plaza", 2)
	guestID := f.addGuest(t, domain.AccommodationSelfManaged)

	outcome, err := f.assigner.ProcessForGuest(context.Background(), f.eventID, guestID)
	require.NoError(t, err)
	assert.False(t, outcome.Success)

	_, err = f.mem.Hotels.GetAssignmentByGuest(context.Background(), f.eventID, guestID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAssignEarlyCheckIn(t *testing.T) {
	f := newFixture(t)
	f.addHotel(t, "Grand Plaza", 2)
	guestID := f.addGuest(t, domain.AccommodationProvided)

	// Arrives the morning of the first day, before check-in opens.
	arrive := time.Date(2026, 9, 12, 9, 30, 0, 0, time.UTC)
	require.NoError(t, f.mem.Travel.Upsert(context.Background(), &domain.TravelInfo{
		GuestID:    guestID,
		TravelMode: domain.TravelAir,
		ArriveAt:   &arrive,
	}))

	outcome, err := f.assigner.ProcessForGuest(context.Background(), f.eventID, guestID)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.True(t, outcome.EarlyCheckIn)
}

func TestAssignNoEarlyCheckInForAfternoonArrival(t *testing.T) {
	f := newFixture(t)
	f.addHotel(t, "Grand Plaza", 2)
	guestID := f.addGuest(t, domain.AccommodationProvided)

	arrive := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	require.NoError(t, f.mem.Travel.Upsert(context.Background(), &domain.TravelInfo{
		GuestID:    guestID,
		TravelMode: domain.TravelTrain,
		ArriveAt:   &arrive,
	}))

	outcome, err := f.assigner.ProcessForGuest(context.Background(), f.eventID, guestID)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.False(t, outcome.EarlyCheckIn)
}
