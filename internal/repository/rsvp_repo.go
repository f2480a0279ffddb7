package repository

import (
	"context"
	"encoding/json"

	"planora/internal/domain"
)

// AccommodationChange stage-2 accommodation fields for the guest row.
type AccommodationChange struct {
	Needs      bool
	Preference string
}

// ChildrenChange stage-2 children fields for the guest row.
type ChildrenChange struct {
	Count   int
	Details json.RawMessage
}

// Stage2Changes everything a stage-2 submit writes. Each section is
// optional; nil sections are not touched.
type Stage2Changes struct {
	Accommodation  *AccommodationChange
	Travel         *domain.TravelInfo
	Children       *ChildrenChange
	MealSelections []domain.MealSelection
	Notes          []string // appended to the guest's notes, in order
}

// RSVPRepo applies a whole stage-2 submit atomically. A failure partway
// rolls back every write, so a guest row never ends up with, say,
// accommodation flags set but meal selections missing.
type RSVPRepo interface {
	ApplyStage2(ctx context.Context, eventID, guestID int64, changes Stage2Changes) error
}
