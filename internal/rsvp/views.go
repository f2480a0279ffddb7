package rsvp

import (
	"encoding/json"
	"time"

	"planora/internal/domain"
)

// GuestView guest fields exposed to the RSVP UI. Provider credentials
// and internal notes never appear here.
type GuestView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`

	RSVPStatus string     `json:"rsvpStatus"`
	RSVPDate   *time.Time `json:"rsvpDate,omitempty"`

	PlusOneConfirmed bool   `json:"plusOneConfirmed"`
	PlusOneName      string `json:"plusOneName,omitempty"`
	PlusOneEmail     string `json:"plusOneEmail,omitempty"`
	PlusOnePhone     string `json:"plusOnePhone,omitempty"`
	PlusOneGender    string `json:"plusOneGender,omitempty"`

	IsLocalGuest        bool            `json:"isLocalGuest"`
	DietaryRestrictions string          `json:"dietaryRestrictions,omitempty"`
	Allergies           string          `json:"allergies,omitempty"`
	ChildrenCount       int             `json:"childrenCount"`
	ChildrenDetails     json.RawMessage `json:"childrenDetails,omitempty"`

	NeedsAccommodation      bool   `json:"needsAccommodation"`
	AccommodationPreference string `json:"accommodationPreference,omitempty"`
}

// EventView event fields exposed to the RSVP UI.
type EventView struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	CoupleNames  string     `json:"coupleNames"`
	StartsOn     time.Time  `json:"startsOn"`
	EndsOn       time.Time  `json:"endsOn"`
	Location     string     `json:"location,omitempty"`
	RSVPDeadline *time.Time `json:"rsvpDeadline,omitempty"`
}

// MealOptionView one selectable meal in the verify payload.
type MealOptionView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Vegetarian  bool   `json:"vegetarian"`
}

// CeremonyView one ceremony in the verify payload, with the guest's
// current attendance intent when recorded.
type CeremonyView struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	HeldOn     time.Time `json:"heldOn"`
	StartsAt   string    `json:"startsAt,omitempty"`
	EndsAt     string    `json:"endsAt,omitempty"`
	Location   string    `json:"location,omitempty"`
	AttireCode string    `json:"attireCode,omitempty"`

	Attending   *bool            `json:"attending,omitempty"`
	MealOptions []MealOptionView `json:"mealOptions,omitempty"`
}

// VerifyResult the RSVP verify contract: everything the guest-facing
// form needs to render.
type VerifyResult struct {
	Guest      GuestView      `json:"guest"`
	Event      EventView      `json:"event"`
	Ceremonies []CeremonyView `json:"ceremonies"`
}

// SubmitResult outcome of any of the submit entry points.
type SubmitResult struct {
	Success        bool       `json:"success"`
	Message        string     `json:"message,omitempty"`
	Guest          *GuestView `json:"guest,omitempty"`
	RequiresStage2 bool       `json:"requiresStage2"`
}

func guestView(g *domain.Guest) *GuestView {
	return &GuestView{
		ID:        g.ID,
		Name:      g.FullName(),
		FirstName: g.FirstName,
		LastName:  g.LastName,
		Email:     g.Email,
		Phone:     g.Phone,

		RSVPStatus: g.RSVPStatus,
		RSVPDate:   g.RSVPDate,

		PlusOneConfirmed: g.PlusOne.Confirmed,
		PlusOneName:      g.PlusOne.Name,
		PlusOneEmail:     g.PlusOne.Email,
		PlusOnePhone:     g.PlusOne.Phone,
		PlusOneGender:    g.PlusOne.Gender,

		IsLocalGuest:        g.IsLocalGuest,
		DietaryRestrictions: g.DietaryRestrictions,
		Allergies:           g.Allergies,
		ChildrenCount:       g.ChildrenCount,
		ChildrenDetails:     g.ChildrenDetails,

		NeedsAccommodation:      g.NeedsAccommodation,
		AccommodationPreference: g.AccommodationPreference,
	}
}

func eventView(ev *domain.WeddingEvent) EventView {
	return EventView{
		ID:           ev.ID,
		Title:        ev.Title,
		CoupleNames:  ev.CoupleNames,
		StartsOn:     ev.StartsOn,
		EndsOn:       ev.EndsOn,
		Location:     ev.Location,
		RSVPDeadline: ev.RSVPDeadline,
	}
}
