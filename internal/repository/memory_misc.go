package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"planora/internal/domain"
)

// MemoryHotelsRepo in-memory HotelsRepo.
type MemoryHotelsRepo struct {
	m *Memory
}

var _ HotelsRepo = (*MemoryHotelsRepo)(nil)

func (r *MemoryHotelsRepo) GetHotel(ctx context.Context, eventID, hotelID int64) (*domain.Hotel, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	h, ok := r.m.hotels[hotelID]
	if !ok || h.EventID != eventID {
		return nil, fmt.Errorf("hotel %d: %w", hotelID, ErrNotFound)
	}
	cp := *h
	return &cp, nil
}

func (r *MemoryHotelsRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Hotel, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var list []*domain.Hotel
	for _, h := range r.m.hotels {
		if h.EventID == eventID {
			cp := *h
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *MemoryHotelsRepo) CreateHotel(ctx context.Context, hotel *domain.Hotel) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *hotel
	cp.ID = r.m.nextID()
	r.m.hotels[cp.ID] = &cp
	return cp.ID, nil
}

func (r *MemoryHotelsRepo) UpdateHotel(ctx context.Context, hotel *domain.Hotel) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.hotels[hotel.ID]
	if !ok || cur.EventID != hotel.EventID {
		return fmt.Errorf("hotel %d: %w", hotel.ID, ErrNotFound)
	}
	cp := *hotel
	r.m.hotels[cp.ID] = &cp
	return nil
}

func (r *MemoryHotelsRepo) DeleteHotel(ctx context.Context, eventID, hotelID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	h, ok := r.m.hotels[hotelID]
	if !ok || h.EventID != eventID {
		return fmt.Errorf("hotel %d: %w", hotelID, ErrNotFound)
	}
	delete(r.m.hotels, hotelID)
	return nil
}

func (r *MemoryHotelsRepo) Occupancy(ctx context.Context, eventID int64) (map[int64]int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	counts := map[int64]int{}
	for key, a := range r.m.assignments {
		if key[0] == eventID {
			counts[a.HotelID]++
		}
	}
	return counts, nil
}

func (r *MemoryHotelsRepo) CreateAssignment(ctx context.Context, a *domain.RoomAssignment) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := [2]int64{a.EventID, a.GuestID}
	if _, exists := r.m.assignments[key]; exists {
		return 0, fmt.Errorf("guest %d already assigned", a.GuestID)
	}
	cp := *a
	cp.ID = r.m.nextID()
	cp.CreatedAt = time.Now()
	r.m.assignments[key] = &cp
	return cp.ID, nil
}

func (r *MemoryHotelsRepo) GetAssignmentByGuest(ctx context.Context, eventID, guestID int64) (*domain.RoomAssignment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.assignments[[2]int64{eventID, guestID}]
	if !ok {
		return nil, fmt.Errorf("room assignment: %w", ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryHotelsRepo) ListAssignments(ctx context.Context, eventID int64) ([]*domain.RoomAssignment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var list []*domain.RoomAssignment
	for key, a := range r.m.assignments {
		if key[0] == eventID {
			cp := *a
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// MemoryTemplatesRepo in-memory TemplatesRepo.
type MemoryTemplatesRepo struct {
	m *Memory
}

var _ TemplatesRepo = (*MemoryTemplatesRepo)(nil)

func templateKey(channel, name string) string { return channel + "/" + name }

func (r *MemoryTemplatesRepo) Get(ctx context.Context, eventID int64, channel, name string) (*domain.MessageTemplate, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.templates[eventID][templateKey(channel, name)]
	if !ok {
		return nil, fmt.Errorf("template %s/%s: %w", channel, name, ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryTemplatesRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.MessageTemplate, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var list []*domain.MessageTemplate
	for _, t := range r.m.templates[eventID] {
		cp := *t
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Channel != list[j].Channel {
			return list[i].Channel < list[j].Channel
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

func (r *MemoryTemplatesRepo) Upsert(ctx context.Context, tpl *domain.MessageTemplate) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.templates[tpl.EventID] == nil {
		r.m.templates[tpl.EventID] = map[string]*domain.MessageTemplate{}
	}
	cp := *tpl
	if cp.ID == 0 {
		cp.ID = r.m.nextID()
	}
	r.m.templates[tpl.EventID][templateKey(tpl.Channel, tpl.Name)] = &cp
	return nil
}

func (r *MemoryTemplatesRepo) Delete(ctx context.Context, eventID, templateID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for key, t := range r.m.templates[eventID] {
		if t.ID == templateID {
			delete(r.m.templates[eventID], key)
			return nil
		}
	}
	return fmt.Errorf("template %d: %w", templateID, ErrNotFound)
}

// MemoryWizardRepo in-memory WizardRepo.
type MemoryWizardRepo struct {
	m *Memory
}

var _ WizardRepo = (*MemoryWizardRepo)(nil)

func (r *MemoryWizardRepo) Get(ctx context.Context, eventID int64) (*domain.WizardState, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.wizard[eventID]
	if !ok {
		return nil, fmt.Errorf("wizard state: %w", ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (r *MemoryWizardRepo) Save(ctx context.Context, state *domain.WizardState) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *state
	cp.UpdatedAt = time.Now()
	r.m.wizard[cp.EventID] = &cp
	return nil
}

// MemoryNotificationsRepo in-memory NotificationsRepo.
type MemoryNotificationsRepo struct {
	m *Memory
}

var _ NotificationsRepo = (*MemoryNotificationsRepo)(nil)

func (r *MemoryNotificationsRepo) Record(ctx context.Context, rec *domain.NotificationRecord) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *rec
	cp.ID = r.m.nextID()
	cp.CreatedAt = time.Now()
	r.m.notifications = append(r.m.notifications, &cp)
	return nil
}

func (r *MemoryNotificationsRepo) ListByGuest(ctx context.Context, eventID, guestID int64) ([]*domain.NotificationRecord, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var list []*domain.NotificationRecord
	for _, n := range r.m.notifications {
		if n.EventID == eventID && n.GuestID == guestID {
			cp := *n
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (r *MemoryNotificationsRepo) ListByEvent(ctx context.Context, eventID int64, page, size int) ([]*domain.NotificationRecord, int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var all []*domain.NotificationRecord
	for _, n := range r.m.notifications {
		if n.EventID == eventID {
			cp := *n
			all = append(all, &cp)
		}
	}
	total := len(all)
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 50
	}
	start := (page - 1) * size
	if start >= total {
		return nil, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// MemoryRSVPRepo in-memory RSVPRepo. The whole apply happens under one
// lock, mirroring the Postgres transaction's all-or-nothing behavior.
type MemoryRSVPRepo struct {
	m *Memory
}

var _ RSVPRepo = (*MemoryRSVPRepo)(nil)

func (r *MemoryRSVPRepo) ApplyStage2(ctx context.Context, eventID, guestID int64, changes Stage2Changes) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	// Validate scope first so nothing is written for a bad guest.
	if _, err := r.m.guest(eventID, guestID); err != nil {
		return err
	}

	if changes.Accommodation != nil {
		if err := r.m.setAccommodationLocked(eventID, guestID,
			changes.Accommodation.Needs, changes.Accommodation.Preference); err != nil {
			return err
		}
	}
	if changes.Travel != nil {
		changes.Travel.GuestID = guestID
		r.m.upsertTravelLocked(changes.Travel)
	}
	if changes.Children != nil {
		if err := r.m.setChildrenLocked(eventID, guestID,
			changes.Children.Count, changes.Children.Details); err != nil {
			return err
		}
	}
	for _, ms := range changes.MealSelections {
		ms.GuestID = guestID
		r.m.upsertMealSelectionLocked(ms)
	}
	for _, note := range changes.Notes {
		if err := r.m.appendNoteLocked(eventID, guestID, note); err != nil {
			return err
		}
	}
	return nil
}
