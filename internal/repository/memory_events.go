package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"planora/internal/domain"
)

// MemoryEventsRepo in-memory EventsRepo.
type MemoryEventsRepo struct {
	m *Memory
}

var _ EventsRepo = (*MemoryEventsRepo)(nil)

func (r *MemoryEventsRepo) GetEvent(ctx context.Context, eventID int64) (*domain.WeddingEvent, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	ev, ok := r.m.events[eventID]
	if !ok {
		return nil, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
	}
	cp := *ev
	return &cp, nil
}

func (r *MemoryEventsRepo) GetEventForOrganizer(ctx context.Context, organizerID, eventID int64) (*domain.WeddingEvent, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	ev, ok := r.m.events[eventID]
	if !ok || ev.OrganizerID != organizerID {
		return nil, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
	}
	cp := *ev
	return &cp, nil
}

func (r *MemoryEventsRepo) ListEvents(ctx context.Context, organizerID int64) ([]*domain.WeddingEvent, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var events []*domain.WeddingEvent
	for _, ev := range r.m.events {
		if ev.OrganizerID == organizerID {
			cp := *ev
			events = append(events, &cp)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartsOn.Before(events[j].StartsOn) })
	return events, nil
}

func (r *MemoryEventsRepo) CreateEvent(ctx context.Context, event *domain.WeddingEvent) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *event
	cp.ID = r.m.nextID()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.m.events[cp.ID] = &cp
	return cp.ID, nil
}

func (r *MemoryEventsRepo) UpdateEvent(ctx context.Context, event *domain.WeddingEvent) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.events[event.ID]
	if !ok || cur.OrganizerID != event.OrganizerID {
		return fmt.Errorf("event %d: %w", event.ID, ErrNotFound)
	}
	cp := *event
	cp.Communication = cur.Communication
	cp.CreatedAt = cur.CreatedAt
	cp.UpdatedAt = time.Now()
	r.m.events[cp.ID] = &cp
	return nil
}

func (r *MemoryEventsRepo) UpdateCommunicationSettings(ctx context.Context, eventID int64, settings domain.CommunicationSettings) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.events[eventID]
	if !ok {
		return fmt.Errorf("event %d: %w", eventID, ErrNotFound)
	}
	cur.Communication = settings
	cur.UpdatedAt = time.Now()
	return nil
}

// MemoryOrganizersRepo in-memory OrganizersRepo.
type MemoryOrganizersRepo struct {
	m *Memory
}

var _ OrganizersRepo = (*MemoryOrganizersRepo)(nil)

func (r *MemoryOrganizersRepo) GetByEmail(ctx context.Context, email string) (*domain.Organizer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, o := range r.m.organizers {
		if o.Email == email {
			cp := *o
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("organizer: %w", ErrNotFound)
}

func (r *MemoryOrganizersRepo) GetByID(ctx context.Context, organizerID int64) (*domain.Organizer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.organizers[organizerID]
	if !ok {
		return nil, fmt.Errorf("organizer %d: %w", organizerID, ErrNotFound)
	}
	cp := *o
	return &cp, nil
}

func (r *MemoryOrganizersRepo) Create(ctx context.Context, org *domain.Organizer) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *org
	cp.ID = r.m.nextID()
	cp.CreatedAt = time.Now()
	r.m.organizers[cp.ID] = &cp
	return cp.ID, nil
}
