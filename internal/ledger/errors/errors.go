package errors

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")

	ErrNoActiveSession = errors.New("no active session for vehicle")

	// ErrDuplicateActiveSession guards the one-active-session-per-vehicle
	// rule, enforced both in the service and by a unique partial index.
	ErrDuplicateActiveSession = errors.New("vehicle already has an active session")

	ErrSessionAlreadyClosed = errors.New("session already closed")

	// ErrVehicleLocked means another gate operation holds the advisory
	// lock for this vehicle right now.
	ErrVehicleLocked = errors.New("vehicle operation in progress")

	ErrReceiptNotFound = errors.New("receipt not found")

	ErrDuplicateReceipt = errors.New("receipt already issued for session")
)
