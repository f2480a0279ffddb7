package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"planora/internal/domain"
)

// MemoryGuestsRepo in-memory GuestsRepo.
type MemoryGuestsRepo struct {
	m *Memory
}

var _ GuestsRepo = (*MemoryGuestsRepo)(nil)

// guest caller must hold mu; enforces the (event, guest) scope.
func (m *Memory) guest(eventID, guestID int64) (*domain.Guest, error) {
	g, ok := m.guests[guestID]
	if !ok || g.EventID != eventID {
		return nil, fmt.Errorf("guest %d: %w", guestID, ErrNotFound)
	}
	return g, nil
}

func (r *MemoryGuestsRepo) GetGuest(ctx context.Context, eventID, guestID int64) (*domain.Guest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	g, err := r.m.guest(eventID, guestID)
	if err != nil {
		return nil, err
	}
	cp := *g
	return &cp, nil
}

func (r *MemoryGuestsRepo) ListGuests(ctx context.Context, eventID int64, filters GuestFilters, page, size int) ([]*domain.Guest, int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var all []*domain.Guest
	for _, g := range r.m.guests {
		if g.EventID != eventID {
			continue
		}
		if filters.RSVPStatus != "" && g.RSVPStatus != filters.RSVPStatus {
			continue
		}
		if filters.Search != "" {
			s := strings.ToLower(filters.Search)
			if !strings.Contains(strings.ToLower(g.FirstName), s) &&
				!strings.Contains(strings.ToLower(g.LastName), s) &&
				!strings.Contains(strings.ToLower(g.Email), s) {
				continue
			}
		}
		cp := *g
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].LastName != all[j].LastName {
			return all[i].LastName < all[j].LastName
		}
		return all[i].ID < all[j].ID
	})

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

func (r *MemoryGuestsRepo) CreateGuest(ctx context.Context, guest *domain.Guest) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *guest
	cp.ID = r.m.nextID()
	if cp.RSVPStatus == "" {
		cp.RSVPStatus = domain.RSVPPending
	}
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.m.guests[cp.ID] = &cp
	return cp.ID, nil
}

func (r *MemoryGuestsRepo) UpdateGuest(ctx context.Context, guest *domain.Guest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, err := r.m.guest(guest.EventID, guest.ID)
	if err != nil {
		return err
	}
	cp := *guest
	cp.CreatedAt = cur.CreatedAt
	cp.UpdatedAt = time.Now()
	r.m.guests[cp.ID] = &cp
	return nil
}

func (r *MemoryGuestsRepo) DeleteGuest(ctx context.Context, eventID, guestID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, err := r.m.guest(eventID, guestID); err != nil {
		return err
	}
	delete(r.m.guests, guestID)
	return nil
}

func (r *MemoryGuestsRepo) ApplyStage1(ctx context.Context, eventID, guestID int64, fields Stage1Fields) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.applyStage1Locked(eventID, guestID, fields)
}

func (m *Memory) applyStage1Locked(eventID, guestID int64, fields Stage1Fields) error {
	g, err := m.guest(eventID, guestID)
	if err != nil {
		return err
	}
	g.FirstName = fields.FirstName
	g.LastName = fields.LastName
	g.Email = fields.Email
	if fields.Phone != "" {
		g.Phone = fields.Phone
	}
	g.RSVPStatus = fields.RSVPStatus
	rsvpDate := fields.RSVPDate
	g.RSVPDate = &rsvpDate
	g.IsLocalGuest = fields.IsLocalGuest
	g.PlusOne = fields.PlusOne
	if fields.DietaryRestrictions != nil {
		g.DietaryRestrictions = *fields.DietaryRestrictions
	}
	if fields.Allergies != nil {
		g.Allergies = *fields.Allergies
	}
	g.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryGuestsRepo) AppendNote(ctx context.Context, eventID, guestID int64, note string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.appendNoteLocked(eventID, guestID, note)
}

func (m *Memory) appendNoteLocked(eventID, guestID int64, note string) error {
	g, err := m.guest(eventID, guestID)
	if err != nil {
		return err
	}
	if g.Notes == "" {
		g.Notes = note
	} else {
		g.Notes += "\n" + note
	}
	g.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryGuestsRepo) SetAccommodation(ctx context.Context, eventID, guestID int64, needs bool, preference string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.setAccommodationLocked(eventID, guestID, needs, preference)
}

func (m *Memory) setAccommodationLocked(eventID, guestID int64, needs bool, preference string) error {
	g, err := m.guest(eventID, guestID)
	if err != nil {
		return err
	}
	g.NeedsAccommodation = needs
	g.AccommodationPreference = preference
	g.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryGuestsRepo) SetChildren(ctx context.Context, eventID, guestID int64, count int, details json.RawMessage) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.setChildrenLocked(eventID, guestID, count, details)
}

func (m *Memory) setChildrenLocked(eventID, guestID int64, count int, details json.RawMessage) error {
	g, err := m.guest(eventID, guestID)
	if err != nil {
		return err
	}
	g.ChildrenCount = count
	g.ChildrenDetails = details
	g.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryGuestsRepo) CountByStatus(ctx context.Context, eventID int64) (map[string]int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	counts := map[string]int{}
	for _, g := range r.m.guests {
		if g.EventID == eventID {
			counts[g.RSVPStatus]++
		}
	}
	return counts, nil
}
