// Package rsvp implements the guest response state machine: the
// two-stage progression (basic attendance, then travel/accommodation
// detail), the combined single-round-trip path, and the legacy flat
// path. Writes go through the repositories; notifications are returned
// as effects for a separate dispatcher, never attempted inline.
package rsvp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"planora/internal/domain"
	"planora/internal/notify"
	"planora/internal/repository"
	"planora/internal/token"
)

// RoomAssigner the auto room assignment collaborator. Its failure is
// reported in a guest note, never across the RSVP write.
type RoomAssigner interface {
	ProcessForGuest(ctx context.Context, eventID, guestID int64) (AssignmentOutcome, error)
}

// AssignmentOutcome what the room assigner reports back.
type AssignmentOutcome struct {
	Success      bool
	Message      string
	EarlyCheckIn bool
}

// Service the RSVP state machine.
type Service struct {
	codec      *token.Codec
	events     repository.EventsRepo
	guests     repository.GuestsRepo
	ceremonies repository.CeremoniesRepo
	attendance repository.AttendanceRepo
	travel     repository.TravelRepo
	messages   repository.MessagesRepo
	stage2     repository.RSVPRepo
	rooms      RoomAssigner
	logger     *zap.Logger
	now        func() time.Time
}

// Deps everything the state machine needs.
type Deps struct {
	Codec      *token.Codec
	Events     repository.EventsRepo
	Guests     repository.GuestsRepo
	Ceremonies repository.CeremoniesRepo
	Attendance repository.AttendanceRepo
	Travel     repository.TravelRepo
	Messages   repository.MessagesRepo
	Stage2     repository.RSVPRepo
	Rooms      RoomAssigner
	Logger     *zap.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		codec:      d.Codec,
		events:     d.Events,
		guests:     d.Guests,
		ceremonies: d.Ceremonies,
		attendance: d.Attendance,
		travel:     d.Travel,
		messages:   d.Messages,
		stage2:     d.Stage2,
		rooms:      d.Rooms,
		logger:     d.Logger,
		now:        time.Now,
	}
}

// ResolveToken verifies an RSVP link token and returns its claims.
func (s *Service) ResolveToken(tok string) (token.Claims, error) {
	return s.codec.Verify(tok)
}

// VerifyLink loads everything the RSVP form needs for a token's guest:
// guest, event, and ceremonies with per-guest attendance and meal options.
func (s *Service) VerifyLink(ctx context.Context, tok string) (*VerifyResult, error) {
	claims, err := s.codec.Verify(tok)
	if err != nil {
		return nil, err
	}

	guest, err := s.loadGuest(ctx, claims.EventID, claims.GuestID)
	if err != nil {
		return nil, err
	}
	event, err := s.loadEvent(ctx, claims.EventID)
	if err != nil {
		return nil, err
	}

	ceremonies, err := s.ceremonies.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ceremonies: %w", err)
	}
	options, err := s.ceremonies.ListMealOptionsByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal options: %w", err)
	}
	attendances, err := s.attendance.ListGuestCeremonies(ctx, guest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	attending := map[int64]bool{}
	for _, gc := range attendances {
		attending[gc.CeremonyID] = gc.Attending
	}

	result := &VerifyResult{
		Guest: *guestView(guest),
		Event: eventView(event),
	}
	for _, c := range ceremonies {
		view := CeremonyView{
			ID:         c.ID,
			Name:       c.Name,
			HeldOn:     c.HeldOn,
			StartsAt:   c.StartsAt,
			EndsAt:     c.EndsAt,
			Location:   c.Location,
			AttireCode: c.AttireCode,
		}
		if a, ok := attending[c.ID]; ok {
			aCopy := a
			view.Attending = &aCopy
		}
		for _, o := range options[c.ID] {
			view.MealOptions = append(view.MealOptions, MealOptionView{
				ID: o.ID, Name: o.Name, Description: o.Description, Vegetarian: o.Vegetarian,
			})
		}
		result.Ceremonies = append(result.Ceremonies, view)
	}
	return result, nil
}

// SubmitStage1 records the basic attendance response.
// RequiresStage2 is derived, not stored: confirmed non-local guests are
// routed to the logistics form; local guests are assumed to need no
// travel coordination and short-circuit to done.
func (s *Service) SubmitStage1(ctx context.Context, eventID, guestID int64, req Stage1Request) (*SubmitResult, []notify.Effect, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	if _, err := s.loadGuest(ctx, eventID, guestID); err != nil {
		return nil, nil, err
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	fields := repository.Stage1Fields{
		FirstName:           strings.TrimSpace(req.FirstName),
		LastName:            strings.TrimSpace(req.LastName),
		Email:               strings.TrimSpace(req.Email),
		Phone:               strings.TrimSpace(req.Phone),
		RSVPStatus:          req.RSVPStatus,
		RSVPDate:            s.now(),
		IsLocalGuest:        req.IsLocalGuest,
		DietaryRestrictions: req.DietaryRestrictions,
		Allergies:           req.Allergies,
	}
	if req.PlusOne != nil {
		fields.PlusOne = domain.PlusOne{
			Confirmed: req.PlusOne.Confirmed,
			Name:      req.PlusOne.Name,
			Email:     req.PlusOne.Email,
			Phone:     req.PlusOne.Phone,
			Gender:    req.PlusOne.Gender,
		}
	}
	if err := s.guests.ApplyStage1(ctx, eventID, guestID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrGuestNotFound
		}
		return nil, nil, fmt.Errorf("failed to apply stage1: %w", err)
	}

	for _, c := range req.Ceremonies {
		// Reject attendance for ceremonies of other events before writing.
		if _, err := s.ceremonies.GetCeremony(ctx, eventID, c.CeremonyID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil, &ValidationError{Fields: map[string]string{
					"ceremonies": fmt.Sprintf("unknown ceremony %d", c.CeremonyID),
				}}
			}
			return nil, nil, fmt.Errorf("failed to check ceremony: %w", err)
		}
		if err := s.attendance.UpsertGuestCeremony(ctx, domain.GuestCeremony{
			GuestID: guestID, CeremonyID: c.CeremonyID, Attending: c.Attending,
		}); err != nil {
			return nil, nil, fmt.Errorf("failed to upsert attendance: %w", err)
		}
	}

	if msg := strings.TrimSpace(req.Message); msg != "" {
		if _, err := s.messages.Create(ctx, &domain.CoupleMessage{
			EventID: eventID, GuestID: guestID, Body: msg,
		}); err != nil {
			return nil, nil, fmt.Errorf("failed to record couple message: %w", err)
		}
	}

	updated, err := s.guests.GetGuest(ctx, eventID, guestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload guest: %w", err)
	}

	requiresStage2 := req.RSVPStatus == domain.RSVPConfirmed && !req.IsLocalGuest
	result := &SubmitResult{
		Success:        true,
		Guest:          guestView(updated),
		RequiresStage2: requiresStage2,
	}
	return result, s.stage1Effects(event, updated), nil
}

// SubmitStage2 records logistics detail. Precondition: the guest's RSVP
// is confirmed; declined and still-pending guests get a state conflict.
// All sections are applied in one transaction. When accommodation
// preference is "provided", the room assigner runs after the commit and
// its outcome (success or failure) is appended as a guest note.
func (s *Service) SubmitStage2(ctx context.Context, eventID, guestID int64, req Stage2Request) (*SubmitResult, []notify.Effect, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	guest, err := s.loadGuest(ctx, eventID, guestID)
	if err != nil {
		return nil, nil, err
	}
	if guest.RSVPStatus != domain.RSVPConfirmed {
		return nil, nil, ErrStageNotAllowed
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	changes, err := s.buildStage2Changes(ctx, eventID, guest, req)
	if err != nil {
		return nil, nil, err
	}
	if err := s.stage2.ApplyStage2(ctx, eventID, guestID, changes); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrGuestNotFound
		}
		return nil, nil, fmt.Errorf("failed to apply stage2: %w", err)
	}

	if req.Accommodation != nil && req.Accommodation.Needed &&
		req.Accommodation.Preference == domain.AccommodationProvided {
		s.runRoomAssignment(ctx, eventID, guestID)
	}

	updated, err := s.guests.GetGuest(ctx, eventID, guestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload guest: %w", err)
	}

	result := &SubmitResult{Success: true, Guest: guestView(updated)}
	return result, s.detailEffects(event, updated), nil
}

// SubmitCombined runs stage 1 and, when more is needed, stage 2 in the
// same call. Single-page RSVP forms use this to avoid two round trips.
// A local guest who attached stage-2 data gets it applied too.
func (s *Service) SubmitCombined(ctx context.Context, eventID, guestID int64, req CombinedRequest) (*SubmitResult, []notify.Effect, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	result, effects, err := s.SubmitStage1(ctx, eventID, guestID, req.Stage1)
	if err != nil {
		return nil, nil, err
	}

	hasStage2Data := req.Stage2 != nil && !req.Stage2.Empty()
	wantsStage2 := result.RequiresStage2 ||
		(req.Stage1.RSVPStatus == domain.RSVPConfirmed && hasStage2Data)
	if !wantsStage2 || !hasStage2Data {
		return result, effects, nil
	}

	stage2Result, stage2Effects, err := s.SubmitStage2(ctx, eventID, guestID, *req.Stage2)
	if err != nil {
		return nil, nil, err
	}
	stage2Result.RequiresStage2 = false
	return stage2Result, stage2Effects, nil
}

// SubmitLegacy handles the flat single-stage shape: attendance plus
// whichever logistics flags were supplied, without stage gating.
func (s *Service) SubmitLegacy(ctx context.Context, eventID, guestID int64, req LegacyRequest) (*SubmitResult, []notify.Effect, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	guest, err := s.loadGuest(ctx, eventID, guestID)
	if err != nil {
		return nil, nil, err
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	status := domain.RSVPDeclined
	if *req.Attending {
		status = domain.RSVPConfirmed
	}
	fields := repository.Stage1Fields{
		FirstName:           firstNonEmpty(strings.TrimSpace(req.FirstName), guest.FirstName),
		LastName:            firstNonEmpty(strings.TrimSpace(req.LastName), guest.LastName),
		Email:               firstNonEmpty(strings.TrimSpace(req.Email), guest.Email),
		Phone:               strings.TrimSpace(req.Phone),
		RSVPStatus:          status,
		RSVPDate:            s.now(),
		IsLocalGuest:        guest.IsLocalGuest,
		PlusOne:             guest.PlusOne,
		DietaryRestrictions: req.DietaryRestrictions,
	}
	if err := s.guests.ApplyStage1(ctx, eventID, guestID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrGuestNotFound
		}
		return nil, nil, fmt.Errorf("failed to apply legacy rsvp: %w", err)
	}

	for _, ceremonyID := range req.Ceremonies {
		if _, err := s.ceremonies.GetCeremony(ctx, eventID, ceremonyID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil, &ValidationError{Fields: map[string]string{
					"ceremonies": fmt.Sprintf("unknown ceremony %d", ceremonyID),
				}}
			}
			return nil, nil, fmt.Errorf("failed to check ceremony: %w", err)
		}
		if err := s.attendance.UpsertGuestCeremony(ctx, domain.GuestCeremony{
			GuestID: guestID, CeremonyID: ceremonyID, Attending: *req.Attending,
		}); err != nil {
			return nil, nil, fmt.Errorf("failed to upsert attendance: %w", err)
		}
	}

	if req.AccommodationNeeded {
		if err := s.guests.SetAccommodation(ctx, eventID, guestID, true, domain.AccommodationNone); err != nil {
			return nil, nil, fmt.Errorf("failed to set accommodation: %w", err)
		}
	}
	if req.TransportationNeeded {
		if err := s.travel.Upsert(ctx, &domain.TravelInfo{
			GuestID: guestID, NeedsTransportation: true, TravelMode: domain.TravelOther,
		}); err != nil {
			return nil, nil, fmt.Errorf("failed to upsert travel info: %w", err)
		}
	}
	if msg := strings.TrimSpace(req.Message); msg != "" {
		if _, err := s.messages.Create(ctx, &domain.CoupleMessage{
			EventID: eventID, GuestID: guestID, Body: msg,
		}); err != nil {
			return nil, nil, fmt.Errorf("failed to record couple message: %w", err)
		}
	}

	updated, err := s.guests.GetGuest(ctx, eventID, guestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload guest: %w", err)
	}

	result := &SubmitResult{Success: true, Guest: guestView(updated)}
	return result, s.stage1Effects(event, updated), nil
}

func (s *Service) buildStage2Changes(ctx context.Context, eventID int64, guest *domain.Guest, req Stage2Request) (repository.Stage2Changes, error) {
	var changes repository.Stage2Changes

	if req.Accommodation != nil {
		pref := domain.AccommodationNone
		if req.Accommodation.Needed {
			pref = req.Accommodation.Preference
		}
		changes.Accommodation = &repository.AccommodationChange{
			Needs:      req.Accommodation.Needed,
			Preference: pref,
		}
		if req.Accommodation.Needed {
			changes.Notes = append(changes.Notes,
				fmt.Sprintf("Accommodation requested (%s)", pref))
		}
	}

	if req.Transport != nil {
		info := &domain.TravelInfo{
			GuestID:             guest.ID,
			NeedsTransportation: req.Transport.Needed,
			TravelMode:          req.Transport.Mode,
			ArriveAt:            req.Transport.ArriveAt,
			DepartAt:            req.Transport.DepartAt,
			FlightNotes:         req.Transport.Notes,
		}
		if req.Transport.Mode == domain.TravelAir {
			info.FlightNotes = foldFlightNotes(req.Transport)
		}
		changes.Travel = info
	}

	if req.Children != nil {
		details, err := json.Marshal(req.Children.Details)
		if err != nil {
			return changes, fmt.Errorf("failed to encode children details: %w", err)
		}
		changes.Children = &repository.ChildrenChange{
			Count:   req.Children.Count,
			Details: details,
		}
	}

	if len(req.Meals) > 0 {
		options, err := s.ceremonies.ListMealOptionsByEvent(ctx, eventID)
		if err != nil {
			return changes, fmt.Errorf("failed to list meal options: %w", err)
		}
		for _, m := range req.Meals {
			// Reject selections naming another event's ceremonies or
			// options before writing, same as the stage-1 attendance path.
			if _, err := s.ceremonies.GetCeremony(ctx, eventID, m.CeremonyID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return changes, &ValidationError{Fields: map[string]string{
						"meals": fmt.Sprintf("unknown ceremony %d", m.CeremonyID),
					}}
				}
				return changes, fmt.Errorf("failed to check ceremony: %w", err)
			}
			if !mealOptionOffered(options[m.CeremonyID], m.MealOptionID) {
				return changes, &ValidationError{Fields: map[string]string{
					"meals": fmt.Sprintf("meal option %d is not offered at ceremony %d", m.MealOptionID, m.CeremonyID),
				}}
			}
			changes.MealSelections = append(changes.MealSelections, domain.MealSelection{
				GuestID: guest.ID, CeremonyID: m.CeremonyID, MealOptionID: m.MealOptionID,
			})
		}
	}

	return changes, nil
}

func mealOptionOffered(options []*domain.MealOption, optionID int64) bool {
	for _, o := range options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// runRoomAssignment invokes the assigner and appends the outcome as a
// guest note. Nothing here can fail the stage-2 submit already committed.
func (s *Service) runRoomAssignment(ctx context.Context, eventID, guestID int64) {
	note := ""
	outcome, err := s.rooms.ProcessForGuest(ctx, eventID, guestID)
	switch {
	case err != nil:
		s.logger.Warn("room assignment failed",
			zap.Int64("event_id", eventID), zap.Int64("guest_id", guestID), zap.Error(err))
		note = "Auto room assignment failed; needs manual follow-up"
	case outcome.Success:
		note = "Room assigned: " + outcome.Message
		if outcome.EarlyCheckIn {
			note += " (early check-in)"
		}
	default:
		note = "Auto room assignment unsuccessful: " + outcome.Message
	}
	if err := s.guests.AppendNote(ctx, eventID, guestID, note); err != nil {
		s.logger.Warn("failed to append room assignment note",
			zap.Int64("guest_id", guestID), zap.Error(err))
	}
}

func (s *Service) stage1Effects(event *domain.WeddingEvent, guest *domain.Guest) []notify.Effect {
	tpl := notify.TemplateRSVPConfirmed
	if guest.RSVPStatus == domain.RSVPDeclined {
		tpl = notify.TemplateRSVPDeclined
	}
	return effectsFor(tpl, event, guest)
}

func (s *Service) detailEffects(event *domain.WeddingEvent, guest *domain.Guest) []notify.Effect {
	return effectsFor(notify.TemplateDetailsReceived, event, guest)
}

// effectsFor emits one effect per channel; the dispatcher decides which
// are actually sendable (configured provider and a usable contact).
func effectsFor(tpl string, event *domain.WeddingEvent, guest *domain.Guest) []notify.Effect {
	params := map[string]string{
		"guest_name":   guest.FullName(),
		"first_name":   guest.FirstName,
		"event_title":  event.Title,
		"couple_names": event.CoupleNames,
		"rsvp_status":  guest.RSVPStatus,
	}
	return []notify.Effect{
		{Channel: domain.ChannelEmail, Template: tpl, Params: params},
		{Channel: domain.ChannelWhatsApp, Template: tpl, Params: params},
	}
}

func (s *Service) loadGuest(ctx context.Context, eventID, guestID int64) (*domain.Guest, error) {
	guest, err := s.guests.GetGuest(ctx, eventID, guestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("failed to load guest: %w", err)
	}
	return guest, nil
}

func (s *Service) loadEvent(ctx context.Context, eventID int64) (*domain.WeddingEvent, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return event, nil
}

func foldFlightNotes(t *TransportRequest) string {
	var parts []string
	if t.Airline != "" {
		parts = append(parts, "Airline: "+t.Airline)
	}
	if t.FlightNumber != "" {
		parts = append(parts, "Flight: "+t.FlightNumber)
	}
	if t.Notes != "" {
		parts = append(parts, t.Notes)
	}
	return strings.Join(parts, "; ")
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
