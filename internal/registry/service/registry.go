package service

import (
	"context"
	"errors"
	registryerrors "parkgate/internal/registry/errors"
	"parkgate/internal/registry/repository"
	"parkgate/pkg/config"
	"parkgate/pkg/model"
	"time"
)

// Registry is the synchronization point for spot state. Claim and Release
// return the sentinel errors from internal/registry/errors; callers decide
// which of those are recoverable.
type Registry interface {
	Provision(ctx context.Context, spots []*model.Spot) error
	Claim(ctx context.Context, spotID string, vehicleID string) error
	Release(ctx context.Context, spotID string) (alreadyFree bool, err error)
	Status(ctx context.Context, spotID string) (*model.Spot, error)
	FindAvailable(ctx context.Context, category model.VehicleCategory, constraints model.SpotConstraints) ([]*model.Spot, error)
	ListSpots(ctx context.Context, limit int, offset int64) ([]*model.Spot, int64, error)
	Occupancy(ctx context.Context) (total int64, available int64, err error)
}

type registryService struct {
	repo repository.SpotRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewRegistryService(repo repository.SpotRepository, cfg *config.Config) Registry {
	return &registryService{
		repo: repo,
		cfg:  cfg,
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *registryService) Provision(ctx context.Context, spots []*model.Spot) error {
	for _, spot := range spots {
		err := s.repo.Insert(ctx, spot)
		if err != nil {
			if errors.Is(err, registryerrors.ErrDuplicateSpot) {
				s.cfg.Log.Debug("Spot already provisioned", "spot_id", spot.ID)
				continue
			}
			return err
		}
	}
	return nil
}

func (s *registryService) Claim(ctx context.Context, spotID string, vehicleID string) error {
	err := s.repo.Claim(ctx, spotID, vehicleID, s.now())
	if err != nil {
		if errors.Is(err, registryerrors.ErrClaimConflict) {
			s.cfg.Log.Debug("Lost claim race", "spot_id", spotID, "vehicle_id", vehicleID)
		}
		return err
	}

	s.cfg.Log.Info("Spot claimed", "spot_id", spotID, "vehicle_id", vehicleID)
	return nil
}

// Release frees a spot. A spot that is already free is reported via the
// alreadyFree flag rather than an error, so compensation paths can call
// Release without caring whether an earlier attempt got through.
func (s *registryService) Release(ctx context.Context, spotID string) (bool, error) {
	err := s.repo.Release(ctx, spotID)
	if err != nil {
		if errors.Is(err, registryerrors.ErrAlreadyFree) {
			s.cfg.Log.Debug("Release was a no-op", "spot_id", spotID)
			return true, nil
		}
		return false, err
	}

	s.cfg.Log.Info("Spot released", "spot_id", spotID)
	return false, nil
}

func (s *registryService) Status(ctx context.Context, spotID string) (*model.Spot, error) {
	return s.repo.FindByID(ctx, spotID)
}

func (s *registryService) FindAvailable(ctx context.Context, category model.VehicleCategory, constraints model.SpotConstraints) ([]*model.Spot, error) {
	return s.repo.FindAvailable(ctx, category, constraints)
}

func (s *registryService) ListSpots(ctx context.Context, limit int, offset int64) ([]*model.Spot, int64, error) {
	spots, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return spots, total, nil
}

func (s *registryService) Occupancy(ctx context.Context) (int64, int64, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	available, err := s.repo.CountAvailable(ctx)
	if err != nil {
		return 0, 0, err
	}
	return total, available, nil
}
