package rsvp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"planora/internal/domain"
	"planora/internal/repository"
	"planora/internal/token"
)

type fakeAssigner struct {
	calls   int
	outcome AssignmentOutcome
	err     error
}

func (f *fakeAssigner) ProcessForGuest(ctx context.Context, eventID, guestID int64) (AssignmentOutcome, error) {
	f.calls++
	return f.outcome, f.err
}

type fixture struct {
	svc        *Service
	mem        *repository.Memory
	assigner   *fakeAssigner
	eventID    int64
	guestID    int64
	ceremonyID int64
	mealID     int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := repository.NewMemory()

	eventID, err := mem.Events.CreateEvent(ctx, &domain.WeddingEvent{
		OrganizerID: 1,
		Title:       "Rao-Mehta Wedding",
		CoupleNames: "Asha & Dev",
		StartsOn:    time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		EndsOn:      time.Date(2026, 11, 22, 0, 0, 0, 0, time.UTC),
		Location:    "Jaipur",
	})
	require.NoError(t, err)

	guestID, err := mem.Guests.CreateGuest(ctx, &domain.Guest{
		EventID:   eventID,
		FirstName: "Nikhil",
		LastName:  "Shah",
		Email:     "nikhil@example.com",
	})
	require.NoError(t, err)

	ceremonyID, err := mem.Ceremonies.CreateCeremony(ctx, &domain.Ceremony{
		EventID: eventID,
		Name:    "Reception",
		HeldOn:  time.Date(2026, 11, 21, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	mealID, err := mem.Ceremonies.CreateMealOption(ctx, &domain.MealOption{
		CeremonyID: ceremonyID, Name: "Paneer Tikka", Vegetarian: true,
	})
	require.NoError(t, err)

	assigner := &fakeAssigner{outcome: AssignmentOutcome{Success: true, Message: "Hotel Amber room 101"}}
	svc := NewService(Deps{
		Codec:      token.NewCodec([]byte("test-secret")),
		Events:     mem.Events,
		Guests:     mem.Guests,
		Ceremonies: mem.Ceremonies,
		Attendance: mem.Attendance,
		Travel:     mem.Travel,
		Messages:   mem.Messages,
		Stage2:     mem.RSVP,
		Rooms:      assigner,
		Logger:     zap.NewNop(),
	})
	return &fixture{
		svc: svc, mem: mem, assigner: assigner,
		eventID: eventID, guestID: guestID, ceremonyID: ceremonyID, mealID: mealID,
	}
}

func stage1Confirmed(local bool) Stage1Request {
	return Stage1Request{
		FirstName:    "Nikhil",
		LastName:     "Shah",
		Email:        "nikhil@example.com",
		RSVPStatus:   domain.RSVPConfirmed,
		IsLocalGuest: local,
	}
}

func TestSubmitStage1TenantIsolation(t *testing.T) {
	f := newFixture(t)

	// The guest exists, but under a different event id: must be
	// indistinguishable from an absent guest.
	_, _, err := f.svc.SubmitStage1(context.Background(), f.eventID+100, f.guestID, stage1Confirmed(false))
	assert.ErrorIs(t, err, ErrGuestNotFound)
}

func TestRequiresStage2Derivation(t *testing.T) {
	cases := []struct {
		name   string
		status string
		local  bool
		want   bool
	}{
		{"confirmed non-local", domain.RSVPConfirmed, false, true},
		{"confirmed local", domain.RSVPConfirmed, true, false},
		{"declined", domain.RSVPDeclined, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			req := stage1Confirmed(tc.local)
			req.RSVPStatus = tc.status
			result, _, err := f.svc.SubmitStage1(context.Background(), f.eventID, f.guestID, req)
			require.NoError(t, err)
			assert.True(t, result.Success)
			assert.Equal(t, tc.want, result.RequiresStage2)
		})
	}
}

func TestStage2GatedOnConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Still pending: stage 2 is a state conflict.
	_, _, err := f.svc.SubmitStage2(ctx, f.eventID, f.guestID, Stage2Request{
		Accommodation: &AccommodationRequest{Needed: true, Preference: domain.AccommodationSelfManaged},
	})
	assert.ErrorIs(t, err, ErrStageNotAllowed)

	// Declined: still a state conflict.
	req := stage1Confirmed(false)
	req.RSVPStatus = domain.RSVPDeclined
	_, _, err1 := f.svc.SubmitStage1(ctx, f.eventID, f.guestID, req)
	require.NoError(t, err1)
	_, _, err = f.svc.SubmitStage2(ctx, f.eventID, f.guestID, Stage2Request{
		Accommodation: &AccommodationRequest{Needed: true, Preference: domain.AccommodationSelfManaged},
	})
	assert.ErrorIs(t, err, ErrStageNotAllowed)
}

func TestCeremonySelectionIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := stage1Confirmed(false)
	req.Ceremonies = []CeremonyAttendance{{CeremonyID: f.ceremonyID, Attending: true}}
	_, _, err := f.svc.SubmitStage1(ctx, f.eventID, f.guestID, req)
	require.NoError(t, err)

	// Resubmission flips the value without duplicating the row.
	req.Ceremonies[0].Attending = false
	_, _, err = f.svc.SubmitStage1(ctx, f.eventID, f.guestID, req)
	require.NoError(t, err)

	list, err := f.mem.Attendance.ListGuestCeremonies(ctx, f.guestID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Attending)
}

func TestStage1RejectsUnknownCeremony(t *testing.T) {
	f := newFixture(t)

	req := stage1Confirmed(false)
	req.Ceremonies = []CeremonyAttendance{{CeremonyID: 9999, Attending: true}}
	_, _, err := f.svc.SubmitStage1(context.Background(), f.eventID, f.guestID, req)
	ve, ok := AsValidationError(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Contains(t, ve.Fields, "ceremonies")
}

func TestStage2RejectsOtherEventsCeremony(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	otherEventID, err := f.mem.Events.CreateEvent(ctx, &domain.WeddingEvent{
		OrganizerID: 2,
		Title:       "Keller-Ito Wedding",
		StartsOn:    time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC),
		EndsOn:      time.Date(2026, 12, 6, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	otherCeremonyID, err := f.mem.Ceremonies.CreateCeremony(ctx, &domain.Ceremony{
		EventID: otherEventID,
		Name:    "Dinner",
		HeldOn:  time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	otherMealID, err := f.mem.Ceremonies.CreateMealOption(ctx, &domain.MealOption{
		CeremonyID: otherCeremonyID, Name: "Salmon",
	})
	require.NoError(t, err)

	_, _, err = f.svc.SubmitStage1(ctx, f.eventID, f.guestID, stage1Confirmed(false))
	require.NoError(t, err)

	// A valid token for one event must not write meal rows against
	// another event's ceremonies.
	_, _, err = f.svc.SubmitStage2(ctx, f.eventID, f.guestID, Stage2Request{
		Meals: []MealChoice{{CeremonyID: otherCeremonyID, MealOptionID: otherMealID}},
	})
	ve, ok := AsValidationError(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Contains(t, ve.Fields, "meals")

	counts, err := f.mem.Attendance.CountByMealOption(ctx, otherEventID)
	require.NoError(t, err)
	assert.Zero(t, counts[otherMealID])
}

func TestStage2RejectsMealOptionFromWrongCeremony(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Second ceremony in the same event, with its own menu.
	brunchID, err := f.mem.Ceremonies.CreateCeremony(ctx, &domain.Ceremony{
		EventID: f.eventID,
		Name:    "Brunch",
		HeldOn:  time.Date(2026, 11, 22, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, _, err = f.svc.SubmitStage1(ctx, f.eventID, f.guestID, stage1Confirmed(false))
	require.NoError(t, err)

	// The reception's meal option is not on the brunch menu.
	_, _, err = f.svc.SubmitStage2(ctx, f.eventID, f.guestID, Stage2Request{
		Meals: []MealChoice{{CeremonyID: brunchID, MealOptionID: f.mealID}},
	})
	ve, ok := AsValidationError(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Contains(t, ve.Fields, "meals")
}

func TestScenarioConfirmedThenSelfManagedAccommodation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, _, err := f.svc.SubmitStage1(ctx, f.eventID, f.guestID, stage1Confirmed(false))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.RequiresStage2)

	result2, _, err := f.svc.SubmitStage2(ctx, f.eventID, f.guestID, Stage2Request{
		Accommodation: &AccommodationRequest{Needed: true, Preference: domain.AccommodationSelfManaged},
	})
	require.NoError(t, err)
	assert.True(t, result2.Success)

	g, err := f.mem.Guests.GetGuest(ctx, f.eventID, f.guestID)
	require.NoError(t, err)
	assert.True(t, g.NeedsAccommodation)
	assert.Equal(t, domain.AccommodationSelfManaged, g.AccommodationPreference)
	// self_managed must not trigger the room assigner
	assert.Zero(t, f.assigner.calls)
}

func TestScenarioDeclinedThenStage2Conflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := stage1Confirmed(false)
	req.RSVPStatus = domain.RSVPDeclined
	result, _, err := f.svc.SubmitStage1(ctx, f.eventID, f.guestID, req)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.RequiresStage2)

	_, _, err = f.svc.SubmitStage2(ctx, f.eventID, f.guestID, Stage2Request{
		Meals: []MealChoice{{CeremonyID: f.ceremonyID, MealOptionID: f.mealID}},
	})
	assert.ErrorIs(t, err, ErrStageNotAllowed)
}

func TestStage2ProvidedAccommodationRunsAssigner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.SubmitStage1(ctx, f.eventID, f.guestID, stage1Confirmed(false))
	require.NoError(t, err)

	result, _, err := f.svc.SubmitStage2(ctx, f.eventID, f.guestID, Stage2Request{
		Accommodation: &AccommodationRequest{Needed: true, Preference: domain.AccommodationProvided},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, f.assigner.calls)

	g, err := f.mem.Guests.GetGuest(ctx, f.eventID, f.guestID)
	require.NoError(t, err)
	assert.Contains(t, g.Notes, "Room assigned: Hotel Amber room 101")
}

func TestStage2AssignerFailureDoesNotFailSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assigner.err = assert.AnError

	_, _, err := f.svc.SubmitStage1(ctx, f.eventID, f.guestID, stage1Confirmed(false))
	require.NoError(t, err)

	result, _, err := f.svc.SubmitStage2(ctx, f.eventID, f.guestID, Stage2Request{
		Accommodation: &AccommodationRequest{Needed: true, Preference: domain.AccommodationProvided},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)

	g, err := f.mem.Guests.GetGuest(ctx, f.eventID, f.guestID)
	require.NoError(t, err)
	assert.Contains(t, g.Notes, "Auto room assignment failed")
}

func TestStage2AirModeFoldsFlightDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.SubmitStage1(ctx, f.eventID, f.guestID, stage1Confirmed(false))
	require.NoError(t, err)

	arrive := time.Date(2026, 11, 19, 10, 30, 0, 0, time.UTC)
	_, _, err = f.svc.SubmitStage2(ctx, f.eventID, f.guestID, Stage2Request{
		Transport: &TransportRequest{
			Needed: true, Mode: domain.TravelAir,
			ArriveAt: &arrive, Airline: "IndiGo", FlightNumber: "6E-204",
		},
	})
	require.NoError(t, err)

	info, err := f.mem.Travel.GetByGuest(ctx, f.guestID)
	require.NoError(t, err)
	assert.True(t, info.NeedsTransportation)
	assert.Equal(t, domain.TravelAir, info.TravelMode)
	assert.True(t, strings.Contains(info.FlightNotes, "IndiGo") && strings.Contains(info.FlightNotes, "6E-204"))
}

func TestSubmitCombinedAppliesBothStages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, _, err := f.svc.SubmitCombined(ctx, f.eventID, f.guestID, CombinedRequest{
		Stage1: stage1Confirmed(false),
		Stage2: &Stage2Request{
			Meals: []MealChoice{{CeremonyID: f.ceremonyID, MealOptionID: f.mealID}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.RequiresStage2)

	meals, err := f.mem.Attendance.ListMealSelections(ctx, f.guestID)
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, f.mealID, meals[0].MealOptionID)
}

func TestSubmitCombinedWithoutStage2DataReportsPending(t *testing.T) {
	f := newFixture(t)

	result, _, err := f.svc.SubmitCombined(context.Background(), f.eventID, f.guestID, CombinedRequest{
		Stage1: stage1Confirmed(false),
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.RequiresStage2)
}

func TestSubmitLegacyWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	attending := true
	result, effects, err := f.svc.SubmitLegacy(ctx, f.eventID, f.guestID, LegacyRequest{
		Attending:            &attending,
		Ceremonies:           []int64{f.ceremonyID},
		AccommodationNeeded:  true,
		TransportationNeeded: true,
		Message:              "So happy for you both!",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, effects)

	g, err := f.mem.Guests.GetGuest(ctx, f.eventID, f.guestID)
	require.NoError(t, err)
	assert.Equal(t, domain.RSVPConfirmed, g.RSVPStatus)
	assert.True(t, g.NeedsAccommodation)

	info, err := f.mem.Travel.GetByGuest(ctx, f.guestID)
	require.NoError(t, err)
	assert.True(t, info.NeedsTransportation)

	msgs, err := f.mem.Messages.ListByEvent(ctx, f.eventID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestVerifyLink(t *testing.T) {
	f := newFixture(t)

	codec := token.NewCodec([]byte("test-secret"))
	tok, err := codec.Generate(f.guestID, f.eventID)
	require.NoError(t, err)

	result, err := f.svc.VerifyLink(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, f.guestID, result.Guest.ID)
	assert.Equal(t, f.eventID, result.Event.ID)
	require.Len(t, result.Ceremonies, 1)
	assert.Equal(t, "Reception", result.Ceremonies[0].Name)
	require.Len(t, result.Ceremonies[0].MealOptions, 1)
	assert.Nil(t, result.Ceremonies[0].Attending) // no intent recorded yet
}

func TestVerifyLinkBadToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.VerifyLink(context.Background(), "garbage")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestStage1ValidationErrors(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.SubmitStage1(context.Background(), f.eventID, f.guestID, Stage1Request{
		RSVPStatus: "maybe",
	})
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "firstName")
	assert.Contains(t, ve.Fields, "rsvpStatus")
}

func TestStage1EffectsMatchStatus(t *testing.T) {
	f := newFixture(t)

	req := stage1Confirmed(false)
	req.RSVPStatus = domain.RSVPDeclined
	_, effects, err := f.svc.SubmitStage1(context.Background(), f.eventID, f.guestID, req)
	require.NoError(t, err)
	require.Len(t, effects, 2)
	for _, e := range effects {
		assert.Equal(t, "rsvp_declined", e.Template)
		assert.Equal(t, "Rao-Mehta Wedding", e.Params["event_title"])
	}
}
