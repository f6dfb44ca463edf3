package errors

import "errors"

var (
	ErrSpotNotFound = errors.New("spot not found")

	// ErrClaimConflict means the CAS lost: the spot was taken between the
	// candidate read and the claim. Recoverable by trying the next candidate.
	ErrClaimConflict = errors.New("spot already claimed")

	ErrAlreadyFree = errors.New("spot already free")

	ErrDuplicateSpot = errors.New("spot already exists")

	// ErrNoSpotAvailable is the expected lot-full outcome, never fatal.
	ErrNoSpotAvailable = errors.New("no available spot")
)
