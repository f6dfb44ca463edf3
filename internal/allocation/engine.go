package allocation

import (
	"context"
	"errors"
	"fmt"
	registryerrors "parkgate/internal/registry/errors"
	"parkgate/internal/registry/service"
	"parkgate/pkg/config"
	"parkgate/pkg/model"
)

// Engine picks a spot for a vehicle and claims it through the registry.
// A claim that loses the race moves on to the next ranked candidate;
// after exhausting a refreshed candidate list ClaimMaxAttempts times it
// gives up with ErrNoSpotAvailable.
type Engine interface {
	Allocate(ctx context.Context, vehicleID string, category model.VehicleCategory, constraints model.SpotConstraints) (*model.Spot, error)
}

type engine struct {
	registry service.Registry
	strategy Strategy
	cfg      *config.Config
}

func NewEngine(registry service.Registry, strategy Strategy, cfg *config.Config) Engine {
	return &engine{
		registry: registry,
		strategy: strategy,
		cfg:      cfg,
	}
}

func (e *engine) Allocate(ctx context.Context, vehicleID string, category model.VehicleCategory, constraints model.SpotConstraints) (*model.Spot, error) {
	for attempt := 1; attempt <= e.cfg.ClaimMaxAttempts; attempt++ {
		candidates, err := e.registry.FindAvailable(ctx, category, constraints)
		if err != nil {
			return nil, fmt.Errorf("failed to list candidates: %w", err)
		}
		if len(candidates) == 0 {
			return nil, registryerrors.ErrNoSpotAvailable
		}

		for _, candidate := range e.strategy.Rank(candidates) {
			err := e.registry.Claim(ctx, candidate.ID, vehicleID)
			if err == nil {
				e.cfg.Log.Info("Spot allocated",
					"spot_id", candidate.ID,
					"vehicle_id", vehicleID,
					"strategy", e.strategy.Name(),
					"attempt", attempt,
				)
				claimed := *candidate
				claimed.Status = model.SpotOccupied
				claimed.VehicleID = vehicleID
				return &claimed, nil
			}

			// A lost race or a spot freed-and-refilled between the read
			// and the claim just means this candidate is gone.
			if errors.Is(err, registryerrors.ErrClaimConflict) || errors.Is(err, registryerrors.ErrSpotNotFound) {
				continue
			}
			return nil, err
		}

		e.cfg.Log.Debug("Candidate list exhausted, refreshing",
			"vehicle_id", vehicleID,
			"attempt", attempt,
		)
	}

	return nil, registryerrors.ErrNoSpotAvailable
}
