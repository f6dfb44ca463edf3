package model

import "time"

// EntryRequest is delivered over HTTP or the gate-events topic when a vehicle
// arrives at the barrier.
type EntryRequest struct {
	VehicleID   string          `json:"vehicle_id" validate:"required,min=1,max=64"`
	Plate       string          `json:"plate" validate:"required,plate"`
	Category    VehicleCategory `json:"category" validate:"required,oneof=motorcycle car bus"`
	Constraints SpotConstraints `json:"constraints"`
}

type EntryResult struct {
	SessionID string    `json:"session_id"`
	SpotID    string    `json:"spot_id"`
	Floor     int       `json:"floor"`
	EntryTime time.Time `json:"entry_time"`
}

type ExitRequest struct {
	VehicleID string `json:"vehicle_id" validate:"required,min=1,max=64"`
}

type ExitResult struct {
	SessionID string    `json:"session_id"`
	ReceiptID string    `json:"receipt_id"`
	SpotID    string    `json:"spot_id"`
	FeeCents  int64     `json:"fee_cents"`
	Currency  string    `json:"currency"`
	EntryTime time.Time `json:"entry_time"`
	ExitTime  time.Time `json:"exit_time"`
}
