package rsvp

import (
	"strings"
	"time"

	"planora/internal/domain"
)

// CeremonyAttendance one guest-ceremony intent in a stage-1 submit.
type CeremonyAttendance struct {
	CeremonyID int64 `json:"ceremonyId"`
	Attending  bool  `json:"attending"`
}

// PlusOneRequest companion block of a stage-1 submit.
type PlusOneRequest struct {
	Confirmed bool   `json:"confirmed"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Gender    string `json:"gender"`
}

// Stage1Request the minimal attendance-confirmation step.
type Stage1Request struct {
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone,omitempty"`
	RSVPStatus   string          `json:"rsvpStatus"` // confirmed|declined
	IsLocalGuest bool            `json:"isLocalGuest"`
	PlusOne      *PlusOneRequest `json:"plusOne,omitempty"`

	DietaryRestrictions *string `json:"dietaryRestrictions,omitempty"`
	Allergies           *string `json:"allergies,omitempty"`

	Ceremonies []CeremonyAttendance `json:"ceremonies,omitempty"`
	Message    string               `json:"message,omitempty"` // free text for the couple
}

// Validate reports field-level problems as a *ValidationError.
func (r *Stage1Request) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(r.FirstName) == "" {
		fields["firstName"] = "required"
	}
	if strings.TrimSpace(r.LastName) == "" {
		fields["lastName"] = "required"
	}
	if strings.TrimSpace(r.Email) == "" {
		fields["email"] = "required"
	} else if !strings.Contains(r.Email, "@") {
		fields["email"] = "must be an email address"
	}
	switch r.RSVPStatus {
	case domain.RSVPConfirmed, domain.RSVPDeclined:
	default:
		fields["rsvpStatus"] = "must be confirmed or declined"
	}
	if r.PlusOne != nil && r.PlusOne.Confirmed && strings.TrimSpace(r.PlusOne.Name) == "" {
		fields["plusOne.name"] = "required when plus one is confirmed"
	}
	for _, c := range r.Ceremonies {
		if c.CeremonyID <= 0 {
			fields["ceremonies"] = "ceremony ids must be positive"
			break
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// AccommodationRequest stage-2 accommodation section.
type AccommodationRequest struct {
	Needed     bool   `json:"needed"`
	Preference string `json:"preference"` // self_managed|provided
}

// TransportRequest stage-2 transportation section. Flight fields are
// folded into the travel record's free-text notes when Mode is air.
type TransportRequest struct {
	Needed   bool       `json:"needed"`
	Mode     string     `json:"mode"` // air|train|bus|car|other
	ArriveAt *time.Time `json:"arriveAt,omitempty"`
	DepartAt *time.Time `json:"departAt,omitempty"`

	Airline      string `json:"airline,omitempty"`
	FlightNumber string `json:"flightNumber,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// ChildrenRequest stage-2 children section.
type ChildrenRequest struct {
	Count   int                  `json:"count"`
	Details []domain.ChildDetail `json:"details,omitempty"`
}

// MealChoice one per-ceremony meal selection.
type MealChoice struct {
	CeremonyID   int64 `json:"ceremonyId"`
	MealOptionID int64 `json:"mealOptionId"`
}

// Stage2Request the detailed logistics step. Every section is optional;
// only present sections are written.
type Stage2Request struct {
	Accommodation *AccommodationRequest `json:"accommodation,omitempty"`
	Transport     *TransportRequest     `json:"transport,omitempty"`
	Children      *ChildrenRequest      `json:"children,omitempty"`
	Meals         []MealChoice          `json:"meals,omitempty"`
}

// Validate reports field-level problems as a *ValidationError.
func (r *Stage2Request) Validate() error {
	fields := map[string]string{}
	if r.Accommodation != nil && r.Accommodation.Needed {
		switch r.Accommodation.Preference {
		case domain.AccommodationSelfManaged, domain.AccommodationProvided:
		default:
			fields["accommodation.preference"] = "must be self_managed or provided"
		}
	}
	if r.Transport != nil && r.Transport.Needed && !domain.ValidTravelMode(r.Transport.Mode) {
		fields["transport.mode"] = "must be one of air, train, bus, car, other"
	}
	if r.Children != nil && r.Children.Count < 0 {
		fields["children.count"] = "must not be negative"
	}
	for _, m := range r.Meals {
		if m.CeremonyID <= 0 || m.MealOptionID <= 0 {
			fields["meals"] = "ceremony and meal option ids must be positive"
			break
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Empty reports whether the request carries no sections at all.
func (r *Stage2Request) Empty() bool {
	return r.Accommodation == nil && r.Transport == nil && r.Children == nil && len(r.Meals) == 0
}

// CombinedRequest one-page RSVP flows submit both stages in a single
// round trip. Stage2 may be nil; it is applied only when stage 1 says
// more is needed or a local guest attached stage-2 data anyway.
type CombinedRequest struct {
	Stage1 Stage1Request  `json:"stage1"`
	Stage2 *Stage2Request `json:"stage2,omitempty"`
}

// Validate reports field-level problems as a *ValidationError.
func (r *CombinedRequest) Validate() error {
	if err := r.Stage1.Validate(); err != nil {
		return err
	}
	if r.Stage2 != nil {
		return r.Stage2.Validate()
	}
	return nil
}

// LegacyRequest the older single-stage shape, kept for backward API
// compatibility. Performs the same category of writes without the
// two-stage gating; not the preferred path for new integrations.
type LegacyRequest struct {
	Attending *bool `json:"attending"`

	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`

	Ceremonies           []int64 `json:"ceremonies,omitempty"` // ids the guest will attend
	AccommodationNeeded  bool    `json:"accommodationNeeded"`
	TransportationNeeded bool    `json:"transportationNeeded"`
	DietaryRestrictions  *string `json:"dietaryRestrictions,omitempty"`
	Message              string  `json:"message,omitempty"`
}

// Validate reports field-level problems as a *ValidationError.
func (r *LegacyRequest) Validate() error {
	fields := map[string]string{}
	if r.Attending == nil {
		fields["attending"] = "required"
	}
	for _, id := range r.Ceremonies {
		if id <= 0 {
			fields["ceremonies"] = "ceremony ids must be positive"
			break
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
