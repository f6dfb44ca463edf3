package model

import "time"

type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionClosed SessionStatus = "closed"
)

// Session records one vehicle's stay from entry to exit. A session holds at
// most one spot, and becomes immutable once ExitTime is set.
type Session struct {
	ID        string          `json:"id" bson:"_id" validate:"required,uuid4"`
	VehicleID string          `json:"vehicle_id" bson:"vehicle_id" validate:"required,min=1,max=64"`
	Plate     string          `json:"plate" bson:"plate" validate:"required,min=2,max=12"`
	Category  VehicleCategory `json:"category" bson:"category" validate:"required,oneof=motorcycle car bus"`
	SpotID    string          `json:"spot_id" bson:"spot_id" validate:"required"`
	EntryTime time.Time       `json:"entry_time" bson:"entry_time" validate:"required"`
	ExitTime  *time.Time      `json:"exit_time,omitempty" bson:"exit_time,omitempty"`
	FeeCents  *int64          `json:"fee_cents,omitempty" bson:"fee_cents,omitempty"`
	Status    SessionStatus   `json:"status" bson:"status" validate:"required,oneof=active closed"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
}

func (s *Session) Active() bool {
	return s.Status == SessionActive
}
