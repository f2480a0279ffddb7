package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"planora/internal/domain"
	"planora/internal/repository"
)

type sentEmail struct {
	to, subject, body string
}

type fakeEmail struct {
	configured bool
	err        error
	sent       []sentEmail
}

func (f *fakeEmail) IsConfigured() bool { return f.configured }

func (f *fakeEmail) Send(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

type fakeWhatsApp struct {
	configured bool
	err        error
	sent       []string
}

func (f *fakeWhatsApp) IsConfigured() bool { return f.configured }

func (f *fakeWhatsApp) Send(_ context.Context, to, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+": "+body)
	return nil
}

type fakeFactory struct {
	email    *fakeEmail
	whatsapp *fakeWhatsApp
}

func (f *fakeFactory) Email(*domain.WeddingEvent) EmailSender       { return f.email }
func (f *fakeFactory) WhatsApp(*domain.WeddingEvent) WhatsAppSender { return f.whatsapp }

func dispatcherFixture(t *testing.T, factory *fakeFactory) (*Dispatcher, *repository.Memory) {
	t.Helper()
	mem := repository.NewMemory()
	d := NewDispatcher(factory, mem.Templates, mem.Notifications, zap.NewNop())
	return d, mem
}

func testEvent() *domain.WeddingEvent {
	return &domain.WeddingEvent{ID: 1, Title: "Anna & Ben's Wedding", CoupleNames: "Anna & Ben"}
}

func testGuest() *domain.Guest {
	return &domain.Guest{
		ID:        7,
		EventID:   1,
		FirstName: "Maria",
		LastName:  "Silva",
		Email:     "maria@example.com",
		Phone:     "+351912345678",
	}
}

func confirmedEffects() []Effect {
	params := map[string]string{
		"guest_name":  "Maria Silva",
		"first_name":  "Maria",
		"event_title": "Anna & Ben's Wedding",
		"couple_names": "Anna & Ben",
		"rsvp_status": "confirmed",
	}
	return []Effect{
		{Channel: domain.ChannelEmail, Template: TemplateRSVPConfirmed, Params: params},
		{Channel: domain.ChannelWhatsApp, Template: TemplateRSVPConfirmed, Params: params},
	}
}

func TestDispatchSendsOnConfiguredChannels(t *testing.T) {
	factory := &fakeFactory{
		email:    &fakeEmail{configured: true},
		whatsapp: &fakeWhatsApp{configured: true},
	}
	d, mem := dispatcherFixture(t, factory)

	outcomes := d.Dispatch(context.Background(), testEvent(), testGuest(), confirmedEffects())

	require.Len(t, outcomes, 2)
	assert.Equal(t, domain.NotificationSent, outcomes[0].Status)
	assert.Equal(t, domain.NotificationSent, outcomes[1].Status)

	require.Len(t, factory.email.sent, 1)
	assert.Equal(t, "maria@example.com", factory.email.sent[0].to)
	assert.Contains(t, factory.email.sent[0].subject, "Anna & Ben's Wedding")
	assert.Contains(t, factory.email.sent[0].body, "Dear Maria Silva")
	require.Len(t, factory.whatsapp.sent, 1)
	assert.Contains(t, factory.whatsapp.sent[0], "Hi Maria!")

	recs, err := mem.Notifications.ListByGuest(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, domain.NotificationSent, rec.Status)
		assert.Equal(t, TemplateRSVPConfirmed, rec.Template)
	}
}

func TestDispatchSkipsUnconfiguredChannel(t *testing.T) {
	factory := &fakeFactory{
		email:    &fakeEmail{configured: false},
		whatsapp: &fakeWhatsApp{configured: true},
	}
	d, mem := dispatcherFixture(t, factory)

	outcomes := d.Dispatch(context.Background(), testEvent(), testGuest(), confirmedEffects())

	require.Len(t, outcomes, 2)
	assert.Equal(t, domain.NotificationSkipped, outcomes[0].Status)
	assert.Equal(t, "no email provider configured", outcomes[0].Detail)
	assert.Equal(t, domain.NotificationSent, outcomes[1].Status)
	assert.Empty(t, factory.email.sent)

	recs, err := mem.Notifications.ListByGuest(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Len(t, recs, 2)
}

func TestDispatchSkipsGuestWithoutContact(t *testing.T) {
	factory := &fakeFactory{
		email:    &fakeEmail{configured: true},
		whatsapp: &fakeWhatsApp{configured: true},
	}
	d, _ := dispatcherFixture(t, factory)

	guest := testGuest()
	guest.Phone = ""
	outcomes := d.Dispatch(context.Background(), testEvent(), guest, confirmedEffects())

	require.Len(t, outcomes, 2)
	assert.Equal(t, domain.NotificationSent, outcomes[0].Status)
	assert.Equal(t, domain.NotificationSkipped, outcomes[1].Status)
	assert.Equal(t, "guest has no phone number", outcomes[1].Detail)
	assert.Empty(t, factory.whatsapp.sent)
}

func TestDispatchAbsorbsSendFailure(t *testing.T) {
	factory := &fakeFactory{
		email:    &fakeEmail{configured: true, err: errors.New("provider unavailable")},
		whatsapp: &fakeWhatsApp{configured: true},
	}
	d, mem := dispatcherFixture(t, factory)

	outcomes := d.Dispatch(context.Background(), testEvent(), testGuest(), confirmedEffects())

	require.Len(t, outcomes, 2)
	assert.Equal(t, domain.NotificationFailed, outcomes[0].Status)
	assert.Equal(t, "provider unavailable", outcomes[0].Detail)
	// One channel failing does not stop the other.
	assert.Equal(t, domain.NotificationSent, outcomes[1].Status)
	require.Len(t, factory.whatsapp.sent, 1)

	recs, err := mem.Notifications.ListByGuest(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, domain.NotificationFailed, recs[0].Status)
	assert.Equal(t, "provider unavailable", recs[0].Detail)
}

func TestDispatchUsesEventTemplateOverride(t *testing.T) {
	factory := &fakeFactory{
		email:    &fakeEmail{configured: true},
		whatsapp: &fakeWhatsApp{configured: false},
	}
	d, mem := dispatcherFixture(t, factory)

	err := mem.Templates.Upsert(context.Background(), &domain.MessageTemplate{
		EventID: 1,
		Channel: domain.ChannelEmail,
		Name:    TemplateRSVPConfirmed,
		Subject: "See you at {{.event_title}}",
		Body:    "{{.first_name}}, we saved you a seat.",
	})
	require.NoError(t, err)

	d.Dispatch(context.Background(), testEvent(), testGuest(), confirmedEffects())

	require.Len(t, factory.email.sent, 1)
	assert.Equal(t, "See you at Anna & Ben's Wedding", factory.email.sent[0].subject)
	assert.Equal(t, "Maria, we saved you a seat.", factory.email.sent[0].body)
}

func TestDispatchUnknownChannelSkipped(t *testing.T) {
	factory := &fakeFactory{
		email:    &fakeEmail{configured: true},
		whatsapp: &fakeWhatsApp{configured: true},
	}
	d, _ := dispatcherFixture(t, factory)

	outcomes := d.Dispatch(context.Background(), testEvent(), testGuest(), []Effect{
		{Channel: "carrier_pigeon", Template: TemplateRSVPConfirmed},
	})

	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.NotificationSkipped, outcomes[0].Status)
}
