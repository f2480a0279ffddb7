package service

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

func guestFixture(t *testing.T) (GuestService, *repository.Memory, int64) {
	t.Helper()
	mem := repository.NewMemory()
	codec := token.NewCodec([]byte("test-secret"))
	svc := NewGuestService(mem.Events, mem.Guests, mem.Notifications, codec,
		"https://planora.example/", zap.NewNop())

	eventID, err := mem.Events.CreateEvent(context.Background(), &domain.WeddingEvent{
		OrganizerID: 1,
		Title:       "Anna & Ben's Wedding",
		StartsOn:    time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		EndsOn:      time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return svc, mem, eventID
}

func TestGuestCRUDOwnershipGate(t *testing.T) {
	svc, _, eventID := guestFixture(t)
	ctx := context.Background()

	guestID, err := svc.CreateGuest(ctx, 1, &domain.Guest{EventID: eventID, FirstName: "Maria"})
	require.NoError(t, err)

	got, err := svc.GetGuest(ctx, 1, eventID, guestID)
	require.NoError(t, err)
	assert.Equal(t, domain.RSVPPending, got.RSVPStatus)

	// A different organizer cannot reach the guest through any door.
	_, err = svc.GetGuest(ctx, 2, eventID, guestID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	err = svc.DeleteGuest(ctx, 2, eventID, guestID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateGuestNeedsName(t *testing.T) {
	svc, _, eventID := guestFixture(t)

	_, err := svc.CreateGuest(context.Background(), 1, &domain.Guest{EventID: eventID, FirstName: "  "})
	assert.Error(t, err)
}

func TestRSVPLinksVerifiable(t *testing.T) {
	svc, mem, eventID := guestFixture(t)
	ctx := context.Background()

	first, err := mem.Guests.CreateGuest(ctx, &domain.Guest{EventID: eventID, FirstName: "Maria"})
	require.NoError(t, err)
	second, err := mem.Guests.CreateGuest(ctx, &domain.Guest{EventID: eventID, FirstName: "Joao"})
	require.NoError(t, err)

	links, err := svc.RSVPLinks(ctx, 1, eventID, nil)
	require.NoError(t, err)
	require.Len(t, links, 2)

	codec := token.NewCodec([]byte("test-secret"))
	seen := map[int64]bool{}
	for _, link := range links {
		require.True(t, strings.HasPrefix(link.URL, "https://planora.example/rsvp/"), link.URL)
		tok := strings.TrimPrefix(link.URL, "https://planora.example/rsvp/")
		claims, err := codec.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, eventID, claims.EventID)
		assert.Equal(t, link.GuestID, claims.GuestID)
		seen[claims.GuestID] = true
	}
	assert.True(t, seen[first])
	assert.True(t, seen[second])
}

func TestRSVPLinksForSelectedGuests(t *testing.T) {
	svc, mem, eventID := guestFixture(t)
	ctx := context.Background()

	guestID, err := mem.Guests.CreateGuest(ctx, &domain.Guest{EventID: eventID, FirstName: "Maria"})
	require.NoError(t, err)
	_, err = mem.Guests.CreateGuest(ctx, &domain.Guest{EventID: eventID, FirstName: "Joao"})
	require.NoError(t, err)

	links, err := svc.RSVPLinks(ctx, 1, eventID, []int64{guestID})
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, guestID, links[0].GuestID)

	// An id from another event is rejected outright.
	otherEvent, err := mem.Events.CreateEvent(ctx, &domain.WeddingEvent{OrganizerID: 1, Title: "Other"})
	require.NoError(t, err)
	foreign, err := mem.Guests.CreateGuest(ctx, &domain.Guest{EventID: otherEvent, FirstName: "X"})
	require.NoError(t, err)
	_, err = svc.RSVPLinks(ctx, 1, eventID, []int64{foreign})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestImportExportRoundTrip(t *testing.T) {
	svc, _, eventID := guestFixture(t)
	ctx := context.Background()

	workbook := buildTestWorkbook(t, [][]any{
		{"Maria", "Silva", "maria@example.com", "+351912345678", "No", "vegetarian", "nuts", "college friend"},
		{"Joao", "Santos", "", "", "Yes", "", "", ""},
	})

	summary, err := svc.ImportGuests(ctx, 1, eventID, workbook)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Imported)

	guests, total, err := svc.ListGuests(ctx, 1, eventID, repository.GuestFilters{}, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	var maria *domain.Guest
	for _, g := range guests {
		if g.FirstName == "Maria" {
			maria = g
		}
	}
	require.NotNil(t, maria)
	assert.Equal(t, "vegetarian", maria.DietaryRestrictions)
	assert.False(t, maria.IsLocalGuest)
	assert.Equal(t, domain.RSVPPending, maria.RSVPStatus)

	exported, err := svc.ExportGuests(ctx, 1, eventID)
	require.NoError(t, err)
	assert.NotEmpty(t, exported)
}

func TestImportRejectsBadWorkbook(t *testing.T) {
	svc, _, eventID := guestFixture(t)
	ctx := context.Background()

	// Nameless row.
	workbook := buildTestWorkbook(t, [][]any{
		{"", "", "ghost@example.com", "", "No", "", "", ""},
	})
	_, err := svc.ImportGuests(ctx, 1, eventID, workbook)
	assert.Error(t, err)

	_, err = svc.ImportGuests(ctx, 1, eventID, []byte("not a workbook"))
	assert.Error(t, err)
}
