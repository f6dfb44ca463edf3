package model

import "time"

type VehicleCategory string

const (
	CategoryMotorcycle VehicleCategory = "motorcycle"
	CategoryCar        VehicleCategory = "car"
	CategoryBus        VehicleCategory = "bus"
)

func (c VehicleCategory) Valid() bool {
	switch c {
	case CategoryMotorcycle, CategoryCar, CategoryBus:
		return true
	}
	return false
}

type SpotStatus string

const (
	SpotFree     SpotStatus = "free"
	SpotOccupied SpotStatus = "occupied"
)

// Spot is a single physical parking location. Occupancy transitions happen
// only through the registry's claim/release pair; Version increments on every
// committed transition.
type Spot struct {
	ID         string          `json:"id" bson:"_id" validate:"required,min=2,max=16"`
	Floor      int             `json:"floor" bson:"floor" validate:"min=0,max=50"`
	Category   VehicleCategory `json:"category" bson:"category" validate:"required,oneof=motorcycle car bus"`
	Accessible bool            `json:"accessible" bson:"accessible"`
	Charging   bool            `json:"charging" bson:"charging"`
	// DistanceM is the precomputed walking distance from the entrance in
	// meters, used by the allocation strategies.
	DistanceM int        `json:"distance_m" bson:"distance_m" validate:"min=0"`
	Status    SpotStatus `json:"status" bson:"status" validate:"required,oneof=free occupied"`
	VehicleID string     `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`
	Version   int64      `json:"version" bson:"version"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty" bson:"claimed_at,omitempty"`
}

// SpotConstraints narrows a claim to spots carrying the requested attributes.
// A false value means "don't care", not "must lack".
type SpotConstraints struct {
	Accessible bool `json:"accessible" bson:"accessible"`
	Charging   bool `json:"charging" bson:"charging"`
}

// Matches reports whether the spot satisfies every requested constraint.
func (s *Spot) Matches(category VehicleCategory, c SpotConstraints) bool {
	if s.Category != category {
		return false
	}
	if c.Accessible && !s.Accessible {
		return false
	}
	if c.Charging && !s.Charging {
		return false
	}
	return true
}
