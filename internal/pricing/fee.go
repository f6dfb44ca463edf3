package pricing

import (
	"fmt"
	pricingerrors "parkgate/internal/pricing/errors"
	"time"
)

const millisPerHour = 3_600_000

// ComputeFee prices a stay at an hourly rate, prorated to the millisecond
// and rounded half up to the nearest cent. Pure integer arithmetic keeps
// the result exact and deterministic; a zero-length stay costs nothing.
func ComputeFee(entry time.Time, exit time.Time, ratePerHourCents int64) (int64, error) {
	if ratePerHourCents < 0 {
		return 0, fmt.Errorf("%w: negative hourly rate %d", pricingerrors.ErrInvalidRate, ratePerHourCents)
	}
	if exit.Before(entry) {
		return 0, fmt.Errorf("%w: entry=%s exit=%s",
			pricingerrors.ErrInvalidDuration,
			entry.UTC().Format(time.RFC3339),
			exit.UTC().Format(time.RFC3339),
		)
	}

	millis := exit.Sub(entry).Milliseconds()
	fee := (millis*ratePerHourCents + millisPerHour/2) / millisPerHour
	return fee, nil
}
