package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"planora/internal/domain"
)

// MemoryCeremoniesRepo in-memory CeremoniesRepo.
type MemoryCeremoniesRepo struct {
	m *Memory
}

var _ CeremoniesRepo = (*MemoryCeremoniesRepo)(nil)

func (r *MemoryCeremoniesRepo) GetCeremony(ctx context.Context, eventID, ceremonyID int64) (*domain.Ceremony, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.ceremonies[ceremonyID]
	if !ok || c.EventID != eventID {
		return nil, fmt.Errorf("ceremony %d: %w", ceremonyID, ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryCeremoniesRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Ceremony, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var list []*domain.Ceremony
	for _, c := range r.m.ceremonies {
		if c.EventID == eventID {
			cp := *c
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *MemoryCeremoniesRepo) CreateCeremony(ctx context.Context, ceremony *domain.Ceremony) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *ceremony
	cp.ID = r.m.nextID()
	r.m.ceremonies[cp.ID] = &cp
	return cp.ID, nil
}

func (r *MemoryCeremoniesRepo) UpdateCeremony(ctx context.Context, ceremony *domain.Ceremony) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.ceremonies[ceremony.ID]
	if !ok || cur.EventID != ceremony.EventID {
		return fmt.Errorf("ceremony %d: %w", ceremony.ID, ErrNotFound)
	}
	cp := *ceremony
	r.m.ceremonies[cp.ID] = &cp
	return nil
}

func (r *MemoryCeremoniesRepo) DeleteCeremony(ctx context.Context, eventID, ceremonyID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.ceremonies[ceremonyID]
	if !ok || c.EventID != eventID {
		return fmt.Errorf("ceremony %d: %w", ceremonyID, ErrNotFound)
	}
	delete(r.m.ceremonies, ceremonyID)
	return nil
}

func (r *MemoryCeremoniesRepo) ListMealOptionsByEvent(ctx context.Context, eventID int64) (map[int64][]*domain.MealOption, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	options := map[int64][]*domain.MealOption{}
	for _, o := range r.m.mealOptions {
		c, ok := r.m.ceremonies[o.CeremonyID]
		if !ok || c.EventID != eventID {
			continue
		}
		cp := *o
		options[o.CeremonyID] = append(options[o.CeremonyID], &cp)
	}
	for _, opts := range options {
		sort.Slice(opts, func(i, j int) bool { return opts[i].ID < opts[j].ID })
	}
	return options, nil
}

func (r *MemoryCeremoniesRepo) CreateMealOption(ctx context.Context, option *domain.MealOption) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *option
	cp.ID = r.m.nextID()
	r.m.mealOptions[cp.ID] = &cp
	return cp.ID, nil
}

func (r *MemoryCeremoniesRepo) DeleteMealOption(ctx context.Context, ceremonyID, optionID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.mealOptions[optionID]
	if !ok || o.CeremonyID != ceremonyID {
		return fmt.Errorf("meal option %d: %w", optionID, ErrNotFound)
	}
	delete(r.m.mealOptions, optionID)
	return nil
}

// MemoryAttendanceRepo in-memory AttendanceRepo.
type MemoryAttendanceRepo struct {
	m *Memory
}

var _ AttendanceRepo = (*MemoryAttendanceRepo)(nil)

func (r *MemoryAttendanceRepo) GetGuestCeremony(ctx context.Context, guestID, ceremonyID int64) (*domain.GuestCeremony, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	gc, ok := r.m.guestCeremonies[[2]int64{guestID, ceremonyID}]
	if !ok {
		return nil, fmt.Errorf("guest ceremony: %w", ErrNotFound)
	}
	cp := *gc
	return &cp, nil
}

func (r *MemoryAttendanceRepo) UpsertGuestCeremony(ctx context.Context, gc domain.GuestCeremony) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.upsertGuestCeremonyLocked(gc)
	return nil
}

func (m *Memory) upsertGuestCeremonyLocked(gc domain.GuestCeremony) {
	m.guestCeremonies[[2]int64{gc.GuestID, gc.CeremonyID}] = &gc
}

func (r *MemoryAttendanceRepo) ListGuestCeremonies(ctx context.Context, guestID int64) ([]*domain.GuestCeremony, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var list []*domain.GuestCeremony
	for _, gc := range r.m.guestCeremonies {
		if gc.GuestID == guestID {
			cp := *gc
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CeremonyID < list[j].CeremonyID })
	return list, nil
}

func (r *MemoryAttendanceRepo) CountAttendingByCeremony(ctx context.Context, eventID int64) (map[int64]int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	counts := map[int64]int{}
	for _, gc := range r.m.guestCeremonies {
		c, ok := r.m.ceremonies[gc.CeremonyID]
		if ok && c.EventID == eventID && gc.Attending {
			counts[gc.CeremonyID]++
		}
	}
	return counts, nil
}

func (r *MemoryAttendanceRepo) UpsertMealSelection(ctx context.Context, ms domain.MealSelection) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.upsertMealSelectionLocked(ms)
	return nil
}

func (m *Memory) upsertMealSelectionLocked(ms domain.MealSelection) {
	m.mealSelections[[2]int64{ms.GuestID, ms.CeremonyID}] = &ms
}

func (r *MemoryAttendanceRepo) ListMealSelections(ctx context.Context, guestID int64) ([]*domain.MealSelection, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var list []*domain.MealSelection
	for _, ms := range r.m.mealSelections {
		if ms.GuestID == guestID {
			cp := *ms
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CeremonyID < list[j].CeremonyID })
	return list, nil
}

func (r *MemoryAttendanceRepo) CountByMealOption(ctx context.Context, eventID int64) (map[int64]int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	counts := map[int64]int{}
	for _, ms := range r.m.mealSelections {
		c, ok := r.m.ceremonies[ms.CeremonyID]
		if ok && c.EventID == eventID {
			counts[ms.MealOptionID]++
		}
	}
	return counts, nil
}

// MemoryTravelRepo in-memory TravelRepo.
type MemoryTravelRepo struct {
	m *Memory
}

var _ TravelRepo = (*MemoryTravelRepo)(nil)

func (r *MemoryTravelRepo) GetByGuest(ctx context.Context, guestID int64) (*domain.TravelInfo, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	info, ok := r.m.travel[guestID]
	if !ok {
		return nil, fmt.Errorf("travel info: %w", ErrNotFound)
	}
	cp := *info
	return &cp, nil
}

func (r *MemoryTravelRepo) Upsert(ctx context.Context, info *domain.TravelInfo) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.upsertTravelLocked(info)
	return nil
}

func (m *Memory) upsertTravelLocked(info *domain.TravelInfo) {
	cp := *info
	m.travel[cp.GuestID] = &cp
}

func (r *MemoryTravelRepo) CountNeedingTransport(ctx context.Context, eventID int64) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n := 0
	for guestID, info := range r.m.travel {
		g, ok := r.m.guests[guestID]
		if ok && g.EventID == eventID && info.NeedsTransportation {
			n++
		}
	}
	return n, nil
}

// MemoryMessagesRepo in-memory MessagesRepo.
type MemoryMessagesRepo struct {
	m *Memory
}

var _ MessagesRepo = (*MemoryMessagesRepo)(nil)

func (r *MemoryMessagesRepo) Create(ctx context.Context, msg *domain.CoupleMessage) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *msg
	cp.ID = r.m.nextID()
	cp.CreatedAt = time.Now()
	r.m.messages = append(r.m.messages, &cp)
	return cp.ID, nil
}

func (r *MemoryMessagesRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.CoupleMessage, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var list []*domain.CoupleMessage
	for _, msg := range r.m.messages {
		if msg.EventID == eventID {
			cp := *msg
			list = append(list, &cp)
		}
	}
	return list, nil
}
