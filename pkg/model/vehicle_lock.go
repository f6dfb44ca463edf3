package model

import "time"

// VehicleLock is an advisory lock serializing open/close for one vehicle.
// The unique _id insert is the mutual exclusion; ExpiresAt bounds the damage
// of a crashed holder via the collection's TTL index.
type VehicleLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
