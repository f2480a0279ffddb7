// Package rooms assigns couple-provided hotel rooms to guests who asked
// for them. Runs after a stage-2 submit commits; also invocable from the
// organizer dashboard for manual reruns.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"planora/internal/domain"
	"planora/internal/repository"
	"planora/internal/rsvp"
)

// Guests checked in before this hour on the event's first day get the
// early check-in flag for the hotel.
const earlyCheckInHour = 15

// Assigner places guests into the event's hotels in order, first hotel
// with a free room wins. Room numbers are sequential per hotel.
type Assigner struct {
	events repository.EventsRepo
	guests repository.GuestsRepo
	travel repository.TravelRepo
	hotels repository.HotelsRepo
	logger *zap.Logger
}

var _ rsvp.RoomAssigner = (*Assigner)(nil)

func NewAssigner(events repository.EventsRepo, guests repository.GuestsRepo, travel repository.TravelRepo, hotels repository.HotelsRepo, logger *zap.Logger) *Assigner {
	return &Assigner{events: events, guests: guests, travel: travel, hotels: hotels, logger: logger}
}

// ProcessForGuest assigns a room to one guest. Idempotent: a guest who
// already holds an assignment gets the existing one back.
func (a *Assigner) ProcessForGuest(ctx context.Context, eventID, guestID int64) (rsvp.AssignmentOutcome, error) {
	existing, err := a.hotels.GetAssignmentByGuest(ctx, eventID, guestID)
	if err == nil {
		hotel, herr := a.hotels.GetHotel(ctx, eventID, existing.HotelID)
		name := "hotel"
		if herr == nil {
			name = hotel.Name
		}
		return rsvp.AssignmentOutcome{
			Success:      true,
			Message:      fmt.Sprintf("%s, room %s", name, existing.RoomNumber),
			EarlyCheckIn: existing.EarlyCheckIn,
		}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return rsvp.AssignmentOutcome{}, fmt.Errorf("failed to check existing assignment: %w", err)
	}

	guest, err := a.guests.GetGuest(ctx, eventID, guestID)
	if err != nil {
		return rsvp.AssignmentOutcome{}, fmt.Errorf("failed to load guest: %w", err)
	}
	if !guest.NeedsAccommodation || guest.AccommodationPreference != domain.AccommodationProvided {
		return rsvp.AssignmentOutcome{Success: false, Message: "guest did not request a provided room"}, nil
	}

	hotel, roomNumber, err := a.findFreeRoom(ctx, eventID)
	if err != nil {
		return rsvp.AssignmentOutcome{}, err
	}
	if hotel == nil {
		return rsvp.AssignmentOutcome{Success: false, Message: "no rooms available"}, nil
	}

	earlyCheckIn, err := a.needsEarlyCheckIn(ctx, eventID, guestID)
	if err != nil {
		// Arrival time is advisory; assign the room anyway.
		a.logger.Warn("could not determine early check-in",
			zap.Int64("guest_id", guestID), zap.Error(err))
		earlyCheckIn = false
	}

	assignment := &domain.RoomAssignment{
		EventID:      eventID,
		GuestID:      guestID,
		HotelID:      hotel.ID,
		RoomNumber:   roomNumber,
		EarlyCheckIn: earlyCheckIn,
	}
	if _, err := a.hotels.CreateAssignment(ctx, assignment); err != nil {
		return rsvp.AssignmentOutcome{}, fmt.Errorf("failed to create assignment: %w", err)
	}

	return rsvp.AssignmentOutcome{
		Success:      true,
		Message:      fmt.Sprintf("%s, room %s", hotel.Name, roomNumber),
		EarlyCheckIn: earlyCheckIn,
	}, nil
}

// findFreeRoom walks the event's hotels in listing order and returns the
// first with spare capacity, plus the next sequential room number.
// A nil hotel means everything is full.
func (a *Assigner) findFreeRoom(ctx context.Context, eventID int64) (*domain.Hotel, string, error) {
	hotels, err := a.hotels.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list hotels: %w", err)
	}
	occupancy, err := a.hotels.Occupancy(ctx, eventID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read occupancy: %w", err)
	}
	for _, hotel := range hotels {
		used := occupancy[hotel.ID]
		if used < hotel.RoomCount {
			return hotel, fmt.Sprintf("%d", used+1), nil
		}
	}
	return nil, "", nil
}

func (a *Assigner) needsEarlyCheckIn(ctx context.Context, eventID, guestID int64) (bool, error) {
	info, err := a.travel.GetByGuest(ctx, guestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if info.ArriveAt == nil {
		return false, nil
	}
	event, err := a.events.GetEvent(ctx, eventID)
	if err != nil {
		return false, err
	}
	arrival := *info.ArriveAt
	start := event.StartsOn
	sameDay := arrival.Year() == start.Year() && arrival.YearDay() == start.YearDay()
	return sameDay && arrival.Hour() < earlyCheckInHour || arrival.Before(truncateToDay(start)), nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
