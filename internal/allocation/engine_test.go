package allocation

import (
	"context"
	"errors"
	"fmt"
	registryerrors "parkgate/internal/registry/errors"
	"parkgate/internal/registry/repository"
	"parkgate/internal/registry/service"
	"parkgate/pkg/config"
	"parkgate/pkg/logger"
	"parkgate/pkg/model"
	"sync"
	"testing"
	"time"
)

type mockRegistry struct {
	findAvailableFunc func(ctx context.Context, category model.VehicleCategory, constraints model.SpotConstraints) ([]*model.Spot, error)
	claimFunc         func(ctx context.Context, spotID string, vehicleID string) error
}

func (m *mockRegistry) Provision(ctx context.Context, spots []*model.Spot) error { return nil }

func (m *mockRegistry) Claim(ctx context.Context, spotID string, vehicleID string) error {
	if m.claimFunc != nil {
		return m.claimFunc(ctx, spotID, vehicleID)
	}
	return nil
}

func (m *mockRegistry) Release(ctx context.Context, spotID string) (bool, error) {
	return false, nil
}

func (m *mockRegistry) Status(ctx context.Context, spotID string) (*model.Spot, error) {
	return nil, registryerrors.ErrSpotNotFound
}

func (m *mockRegistry) FindAvailable(ctx context.Context, category model.VehicleCategory, constraints model.SpotConstraints) ([]*model.Spot, error) {
	if m.findAvailableFunc != nil {
		return m.findAvailableFunc(ctx, category, constraints)
	}
	return nil, nil
}

func (m *mockRegistry) ListSpots(ctx context.Context, limit int, offset int64) ([]*model.Spot, int64, error) {
	return nil, 0, nil
}

func (m *mockRegistry) Occupancy(ctx context.Context) (int64, int64, error) { return 0, 0, nil }

func newEngineConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})

	return &config.Config{
		Log:              log,
		ReadTimeout:      5 * time.Second,
		WriteTimeout:     5 * time.Second,
		ClaimMaxAttempts: 3,
	}
}

func TestAllocate_PicksFirstRankedSpot(t *testing.T) {
	reg := &mockRegistry{
		findAvailableFunc: func(ctx context.Context, category model.VehicleCategory, constraints model.SpotConstraints) ([]*model.Spot, error) {
			return []*model.Spot{
				spot("F1-002", 1, 20),
				spot("F1-001", 1, 10),
			}, nil
		},
	}

	strategy, _ := NewStrategy(StrategyNearest)
	eng := NewEngine(reg, strategy, newEngineConfig())

	got, err := eng.Allocate(context.Background(), "VH-1", model.CategoryCar, model.SpotConstraints{})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if got.ID != "F1-001" {
		t.Errorf("expected F1-001, got %s", got.ID)
	}
	if got.Status != model.SpotOccupied || got.VehicleID != "VH-1" {
		t.Errorf("expected claimed spot state, got %+v", got)
	}
}

func TestAllocate_FallsThroughOnClaimConflict(t *testing.T) {
	reg := &mockRegistry{
		findAvailableFunc: func(ctx context.Context, category model.VehicleCategory, constraints model.SpotConstraints) ([]*model.Spot, error) {
			return []*model.Spot{
				spot("F1-001", 1, 10),
				spot("F1-002", 1, 20),
			}, nil
		},
		claimFunc: func(ctx context.Context, spotID string, vehicleID string) error {
			if spotID == "F1-001" {
				return fmt.Errorf("%w: %s", registryerrors.ErrClaimConflict, spotID)
			}
			return nil
		},
	}

	strategy, _ := NewStrategy(StrategyNearest)
	eng := NewEngine(reg, strategy, newEngineConfig())

	got, err := eng.Allocate(context.Background(), "VH-1", model.CategoryCar, model.SpotConstraints{})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if got.ID != "F1-002" {
		t.Errorf("expected fallback to F1-002, got %s", got.ID)
	}
}

func TestAllocate_RefreshesCandidatesBetweenAttempts(t *testing.T) {
	finds := 0
	reg := &mockRegistry{
		findAvailableFunc: func(ctx context.Context, category model.VehicleCategory, constraints model.SpotConstraints) ([]*model.Spot, error) {
			finds++
			if finds == 1 {
				return []*model.Spot{spot("F1-001", 1, 10)}, nil
			}
			return []*model.Spot{spot("F1-002", 1, 20)}, nil
		},
		claimFunc: func(ctx context.Context, spotID string, vehicleID string) error {
			if spotID == "F1-001" {
				return fmt.Errorf("%w: %s", registryerrors.ErrClaimConflict, spotID)
			}
			return nil
		},
	}

	strategy, _ := NewStrategy(StrategyNearest)
	eng := NewEngine(reg, strategy, newEngineConfig())

	got, err := eng.Allocate(context.Background(), "VH-1", model.CategoryCar, model.SpotConstraints{})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if got.ID != "F1-002" {
		t.Errorf("expected spot from refreshed list, got %s", got.ID)
	}
	if finds != 2 {
		t.Errorf("expected 2 candidate reads, got %d", finds)
	}
}

func TestAllocate_GivesUpAfterMaxAttempts(t *testing.T) {
	finds := 0
	reg := &mockRegistry{
		findAvailableFunc: func(ctx context.Context, category model.VehicleCategory, constraints model.SpotConstraints) ([]*model.Spot, error) {
			finds++
			return []*model.Spot{spot("F1-001", 1, 10)}, nil
		},
		claimFunc: func(ctx context.Context, spotID string, vehicleID string) error {
			return fmt.Errorf("%w: %s", registryerrors.ErrClaimConflict, spotID)
		},
	}

	cfg := newEngineConfig()
	strategy, _ := NewStrategy(StrategyNearest)
	eng := NewEngine(reg, strategy, cfg)

	_, err := eng.Allocate(context.Background(), "VH-1", model.CategoryCar, model.SpotConstraints{})
	if !errors.Is(err, registryerrors.ErrNoSpotAvailable) {
		t.Fatalf("expected ErrNoSpotAvailable, got %v", err)
	}
	if finds != cfg.ClaimMaxAttempts {
		t.Errorf("expected %d attempts, got %d", cfg.ClaimMaxAttempts, finds)
	}
}

func TestAllocate_EmptyLot(t *testing.T) {
	reg := &mockRegistry{
		findAvailableFunc: func(ctx context.Context, category model.VehicleCategory, constraints model.SpotConstraints) ([]*model.Spot, error) {
			return nil, nil
		},
	}

	strategy, _ := NewStrategy(StrategyNearest)
	eng := NewEngine(reg, strategy, newEngineConfig())

	_, err := eng.Allocate(context.Background(), "VH-1", model.CategoryCar, model.SpotConstraints{})
	if !errors.Is(err, registryerrors.ErrNoSpotAvailable) {
		t.Fatalf("expected ErrNoSpotAvailable, got %v", err)
	}
}

func TestAllocate_PropagatesUnexpectedErrors(t *testing.T) {
	boom := errors.New("store down")
	reg := &mockRegistry{
		findAvailableFunc: func(ctx context.Context, category model.VehicleCategory, constraints model.SpotConstraints) ([]*model.Spot, error) {
			return []*model.Spot{spot("F1-001", 1, 10)}, nil
		},
		claimFunc: func(ctx context.Context, spotID string, vehicleID string) error {
			return boom
		},
	}

	strategy, _ := NewStrategy(StrategyNearest)
	eng := NewEngine(reg, strategy, newEngineConfig())

	_, err := eng.Allocate(context.Background(), "VH-1", model.CategoryCar, model.SpotConstraints{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error to surface, got %v", err)
	}
}

// Exercises the full registry under contention: with more vehicles than
// spots, every spot ends up claimed by exactly one vehicle and the rest
// get the lot-full error.
func TestAllocate_ConcurrentContention(t *testing.T) {
	repo := repository.NewMemorySpotRepository()
	cfg := newEngineConfig()
	reg := service.NewRegistryService(repo, cfg)

	const spotCount = 5
	const vehicles = 20

	ctx := context.Background()
	for i := 0; i < spotCount; i++ {
		err := repo.Insert(ctx, spot(fmt.Sprintf("F1-%03d", i+1), 1, (i+1)*10))
		if err != nil {
			t.Fatalf("insert spot: %v", err)
		}
	}

	strategy, _ := NewStrategy(StrategyNearest)
	eng := NewEngine(reg, strategy, cfg)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allocated := make(map[string]string)
	lotFull := 0

	for i := 0; i < vehicles; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			vehicleID := fmt.Sprintf("VH-%02d", n)
			got, err := eng.Allocate(ctx, vehicleID, model.CategoryCar, model.SpotConstraints{})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				if owner, taken := allocated[got.ID]; taken {
					t.Errorf("spot %s allocated to both %s and %s", got.ID, owner, vehicleID)
				}
				allocated[got.ID] = vehicleID
			case errors.Is(err, registryerrors.ErrNoSpotAvailable):
				lotFull++
			default:
				t.Errorf("unexpected allocation error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if len(allocated) != spotCount {
		t.Errorf("expected %d allocations, got %d", spotCount, len(allocated))
	}
	if len(allocated)+lotFull != vehicles {
		t.Errorf("expected every vehicle to resolve, got %d allocated + %d lot-full of %d",
			len(allocated), lotFull, vehicles)
	}
}
