package model

import "time"

// Receipt is the immutable record of a closed session. Exactly one receipt
// exists per closed session (unique index on session_id) and it is never
// updated after insertion.
type Receipt struct {
	ID        string    `json:"id" bson:"_id"`
	SessionID string    `json:"session_id" bson:"session_id"`
	VehicleID string    `json:"vehicle_id" bson:"vehicle_id"`
	Plate     string    `json:"plate" bson:"plate"`
	SpotID    string    `json:"spot_id" bson:"spot_id"`
	EntryTime time.Time `json:"entry_time" bson:"entry_time"`
	ExitTime  time.Time `json:"exit_time" bson:"exit_time"`
	FeeCents  int64     `json:"fee_cents" bson:"fee_cents"`
	Currency  string    `json:"currency" bson:"currency"`
	IssuedAt  time.Time `json:"issued_at" bson:"issued_at"`
}
