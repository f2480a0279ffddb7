package domain

import "time"

// Travel mode values for travel_info.travel_mode.
const (
	TravelAir   = "air"
	TravelTrain = "train"
	TravelBus   = "bus"
	TravelCar   = "car"
	TravelOther = "other"
)

// TravelInfo per-guest travel record (travel_info table).
// At most one row per guest; upserted by guest_id.
type TravelInfo struct {
	GuestID             int64      `db:"guest_id"`
	NeedsTransportation bool       `db:"needs_transportation"`
	TravelMode          string     `db:"travel_mode"`
	ArriveAt            *time.Time `db:"arrive_at"`
	DepartAt            *time.Time `db:"depart_at"`
	FlightNotes         string     `db:"flight_notes"` // air-mode details folded into free text
}

// ValidTravelMode reports whether s is a known travel mode.
func ValidTravelMode(s string) bool {
	switch s {
	case TravelAir, TravelTrain, TravelBus, TravelCar, TravelOther:
		return true
	}
	return false
}
