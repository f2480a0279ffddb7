package service

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

func eventFixture(t *testing.T) (EventService, *repository.Memory) {
	t.Helper()
	mem := repository.NewMemory()
	svc := NewEventService(EventServiceDeps{
		Events:        mem.Events,
		Guests:        mem.Guests,
		Ceremonies:    mem.Ceremonies,
		Attendance:    mem.Attendance,
		Travel:        mem.Travel,
		Messages:      mem.Messages,
		Hotels:        mem.Hotels,
		Templates:     mem.Templates,
		Wizard:        mem.Wizard,
		Notifications: mem.Notifications,
		Logger:        zap.NewNop(),
	})
	return svc, mem
}

func newEvent() *domain.WeddingEvent {
	return &domain.WeddingEvent{
		Title:       "Anna & Ben's Wedding",
		CoupleNames: "Anna & Ben",
		StartsOn:    time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		EndsOn:      time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateEventSeedsWizard(t *testing.T) {
	svc, _ := eventFixture(t)
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, 1, newEvent())
	require.NoError(t, err)
	require.NotZero(t, event.ID)

	state, err := svc.GetWizard(ctx, 1, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "basics", state.CurrentStep)
}

func TestEventOwnershipGate(t *testing.T) {
	svc, _ := eventFixture(t)
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, 1, newEvent())
	require.NoError(t, err)

	// Another organizer sees nothing, not a permission error.
	_, err = svc.GetEvent(ctx, 2, event.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Statistics(ctx, 2, event.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = svc.UpdateEvent(ctx, 2, event)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateEventValidation(t *testing.T) {
	svc, _ := eventFixture(t)
	ctx := context.Background()

	bad := newEvent()
	bad.Title = "  "
	_, err := svc.CreateEvent(ctx, 1, bad)
	assert.Error(t, err)

	backwards := newEvent()
	backwards.EndsOn = backwards.StartsOn.AddDate(0, 0, -1)
	_, err = svc.CreateEvent(ctx, 1, backwards)
	assert.Error(t, err)
}

func TestUpdateCommunicationSettingsKeepsRefreshToken(t *testing.T) {
	svc, mem := eventFixture(t)
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, 1, newEvent())
	require.NoError(t, err)

	require.NoError(t, svc.SetGmailRefreshToken(ctx, event.ID, "rt-secret"))

	// A settings update from the dashboard never carries the token.
	err = svc.UpdateCommunicationSettings(ctx, 1, event.ID, domain.CommunicationSettings{
		EmailProvider: domain.EmailProviderGmail,
		EmailFrom:     "anna@example.com",
	})
	require.NoError(t, err)

	stored, err := mem.Events.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "rt-secret", stored.Communication.GmailRefreshToken)
	assert.Equal(t, "anna@example.com", stored.Communication.EmailFrom)
}

func TestSaveWizardRejectsUnknownStep(t *testing.T) {
	svc, _ := eventFixture(t)
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, 1, newEvent())
	require.NoError(t, err)

	_, err = svc.SaveWizard(ctx, 1, event.ID, "payments", nil)
	assert.Error(t, err)

	state, err := svc.SaveWizard(ctx, 1, event.ID, "guests", []string{"basics", "ceremonies"})
	require.NoError(t, err)
	assert.Equal(t, "guests", state.CurrentStep)
	assert.JSONEq(t, `["basics","ceremonies"]`, string(state.CompletedSteps))
}

func TestMealOptionRequiresOwnCeremony(t *testing.T) {
	svc, _ := eventFixture(t)
	ctx := context.Background()

	mine, err := svc.CreateEvent(ctx, 1, newEvent())
	require.NoError(t, err)
	other, err := svc.CreateEvent(ctx, 1, newEvent())
	require.NoError(t, err)

	ceremonyID, err := svc.CreateCeremony(ctx, 1, &domain.Ceremony{
		EventID: other.ID,
		Name:    "Reception",
		HeldOn:  time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// The ceremony belongs to a different event of the same organizer.
	_, err = svc.AddMealOption(ctx, 1, mine.ID, &domain.MealOption{
		CeremonyID: ceremonyID,
		Name:       "Fish",
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStatistics(t *testing.T) {
	svc, mem := eventFixture(t)
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, 1, newEvent())
	require.NoError(t, err)

	ceremonyID, err := svc.CreateCeremony(ctx, 1, &domain.Ceremony{
		EventID: event.ID,
		Name:    "Reception",
		HeldOn:  time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	confirmed, err := mem.Guests.CreateGuest(ctx, &domain.Guest{
		EventID: event.ID, FirstName: "Maria", RSVPStatus: domain.RSVPConfirmed,
	})
	require.NoError(t, err)
	_, err = mem.Guests.CreateGuest(ctx, &domain.Guest{
		EventID: event.ID, FirstName: "Joao", RSVPStatus: domain.RSVPDeclined,
	})
	require.NoError(t, err)

	require.NoError(t, mem.Attendance.UpsertGuestCeremony(ctx, domain.GuestCeremony{
		GuestID: confirmed, CeremonyID: ceremonyID, Attending: true,
	}))
	require.NoError(t, mem.Travel.Upsert(ctx, &domain.TravelInfo{
		GuestID: confirmed, NeedsTransportation: true, TravelMode: domain.TravelAir,
	}))

	stats, err := svc.Statistics(ctx, 1, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalGuests)
	assert.Equal(t, 1, stats.ByStatus[domain.RSVPConfirmed])
	assert.Equal(t, 1, stats.ByStatus[domain.RSVPDeclined])
	assert.Equal(t, 1, stats.AttendingByCeremony[ceremonyID])
	assert.Equal(t, 1, stats.NeedingTransport)
}
