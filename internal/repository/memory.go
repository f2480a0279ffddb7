package repository

import (
	"sync"

	"planora/internal/domain"
)

// Memory shared in-memory backing store for the Memory*Repo types.
// Used by unit tests and by the service layer's state-machine tests;
// behavior mirrors the Postgres implementations, including the
// upsert-by-natural-key invariants.
type Memory struct {
	mu  sync.Mutex
	seq int64

	organizers      map[int64]*domain.Organizer
	events          map[int64]*domain.WeddingEvent
	guests          map[int64]*domain.Guest
	ceremonies      map[int64]*domain.Ceremony
	mealOptions     map[int64]*domain.MealOption
	guestCeremonies map[[2]int64]*domain.GuestCeremony // (guest_id, ceremony_id)
	mealSelections  map[[2]int64]*domain.MealSelection // (guest_id, ceremony_id)
	travel          map[int64]*domain.TravelInfo       // guest_id
	messages        []*domain.CoupleMessage
	hotels          map[int64]*domain.Hotel
	assignments     map[[2]int64]*domain.RoomAssignment // (event_id, guest_id)
	templates       map[int64]map[string]*domain.MessageTemplate // event_id -> "channel/name"
	wizard          map[int64]*domain.WizardState
	notifications   []*domain.NotificationRecord

	Organizers    *MemoryOrganizersRepo
	Events        *MemoryEventsRepo
	Guests        *MemoryGuestsRepo
	Ceremonies    *MemoryCeremoniesRepo
	Attendance    *MemoryAttendanceRepo
	Travel        *MemoryTravelRepo
	Messages      *MemoryMessagesRepo
	Hotels        *MemoryHotelsRepo
	Templates     *MemoryTemplatesRepo
	Wizard        *MemoryWizardRepo
	Notifications *MemoryNotificationsRepo
	RSVP          *MemoryRSVPRepo
}

// NewMemory creates an empty in-memory store with all repo views wired.
func NewMemory() *Memory {
	m := &Memory{
		organizers:      map[int64]*domain.Organizer{},
		events:          map[int64]*domain.WeddingEvent{},
		guests:          map[int64]*domain.Guest{},
		ceremonies:      map[int64]*domain.Ceremony{},
		mealOptions:     map[int64]*domain.MealOption{},
		guestCeremonies: map[[2]int64]*domain.GuestCeremony{},
		mealSelections:  map[[2]int64]*domain.MealSelection{},
		travel:          map[int64]*domain.TravelInfo{},
		hotels:          map[int64]*domain.Hotel{},
		assignments:     map[[2]int64]*domain.RoomAssignment{},
		templates:       map[int64]map[string]*domain.MessageTemplate{},
		wizard:          map[int64]*domain.WizardState{},
	}
	m.Organizers = &MemoryOrganizersRepo{m: m}
	m.Events = &MemoryEventsRepo{m: m}
	m.Guests = &MemoryGuestsRepo{m: m}
	m.Ceremonies = &MemoryCeremoniesRepo{m: m}
	m.Attendance = &MemoryAttendanceRepo{m: m}
	m.Travel = &MemoryTravelRepo{m: m}
	m.Messages = &MemoryMessagesRepo{m: m}
	m.Hotels = &MemoryHotelsRepo{m: m}
	m.Templates = &MemoryTemplatesRepo{m: m}
	m.Wizard = &MemoryWizardRepo{m: m}
	m.Notifications = &MemoryNotificationsRepo{m: m}
	m.RSVP = &MemoryRSVPRepo{m: m}
	return m
}

// nextID caller must hold mu.
func (m *Memory) nextID() int64 {
	m.seq++
	return m.seq
}
