package repository

import (
	"context"
	"fmt"
	registryerrors "parkgate/internal/registry/errors"
	"parkgate/pkg/model"
	"sort"
	"sync"
	"time"
)

// memorySpotRepository keeps the whole lot in a mutex-guarded map. It backs
// the memory store driver and the concurrency tests; claim and release keep
// the same compare-and-set semantics as the Mongo repository.
type memorySpotRepository struct {
	mu    sync.Mutex
	spots map[string]*model.Spot
}

func NewMemorySpotRepository() SpotRepository {
	return &memorySpotRepository{
		spots: make(map[string]*model.Spot),
	}
}

func (r *memorySpotRepository) Insert(_ context.Context, spot *model.Spot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.spots[spot.ID]; exists {
		return fmt.Errorf("%w: %s", registryerrors.ErrDuplicateSpot, spot.ID)
	}

	stored := *spot
	if stored.Status == "" {
		stored.Status = model.SpotFree
	}
	r.spots[spot.ID] = &stored
	return nil
}

func (r *memorySpotRepository) FindByID(_ context.Context, id string) (*model.Spot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	spot, exists := r.spots[id]
	if !exists {
		return nil, registryerrors.ErrSpotNotFound
	}

	copy := *spot
	return &copy, nil
}

func (r *memorySpotRepository) FindAll(_ context.Context, limit int, offset int64) ([]*model.Spot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*model.Spot, 0, len(r.spots))
	for _, spot := range r.spots {
		copy := *spot
		all = append(all, &copy)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= int64(len(all)) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memorySpotRepository) FindAvailable(_ context.Context, category model.VehicleCategory, constraints model.SpotConstraints) ([]*model.Spot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var available []*model.Spot
	for _, spot := range r.spots {
		if spot.Status != model.SpotFree {
			continue
		}
		if !spot.Matches(category, constraints) {
			continue
		}
		copy := *spot
		available = append(available, &copy)
	}

	// Same base ordering as the Mongo repository: distance, then ID.
	sort.Slice(available, func(i, j int) bool {
		if available[i].DistanceM != available[j].DistanceM {
			return available[i].DistanceM < available[j].DistanceM
		}
		return available[i].ID < available[j].ID
	})

	return available, nil
}

func (r *memorySpotRepository) Claim(_ context.Context, spotID string, vehicleID string, claimedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	spot, exists := r.spots[spotID]
	if !exists {
		return registryerrors.ErrSpotNotFound
	}
	if spot.Status != model.SpotFree {
		return fmt.Errorf("%w: %s", registryerrors.ErrClaimConflict, spotID)
	}

	spot.Status = model.SpotOccupied
	spot.VehicleID = vehicleID
	spot.ClaimedAt = &claimedAt
	spot.Version++
	return nil
}

func (r *memorySpotRepository) Release(_ context.Context, spotID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	spot, exists := r.spots[spotID]
	if !exists {
		return registryerrors.ErrSpotNotFound
	}
	if spot.Status != model.SpotOccupied {
		return fmt.Errorf("%w: %s", registryerrors.ErrAlreadyFree, spotID)
	}

	spot.Status = model.SpotFree
	spot.VehicleID = ""
	spot.ClaimedAt = nil
	spot.Version++
	return nil
}

func (r *memorySpotRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.spots)), nil
}

func (r *memorySpotRepository) CountAvailable(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, spot := range r.spots {
		if spot.Status == model.SpotFree {
			count++
		}
	}
	return count, nil
}
