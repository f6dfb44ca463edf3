package model

import "time"

// Rate maps a vehicle category to its hourly price in the currency's minor
// unit. The table is read-only at request time; updates land out-of-band and
// are picked up by the pricing table's refresh loop.
type Rate struct {
	Category     VehicleCategory `json:"category" bson:"_id" validate:"required,oneof=motorcycle car bus"`
	PerHourCents int64           `json:"per_hour_cents" bson:"per_hour_cents" validate:"min=0"`
	Currency     string          `json:"currency" bson:"currency" validate:"required,len=3"`
	UpdatedAt    time.Time       `json:"updated_at" bson:"updated_at"`
}
