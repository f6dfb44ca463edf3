package pricing

import (
	"context"
	"errors"
	pricingerrors "parkgate/internal/pricing/errors"
	"parkgate/internal/pricing/repository"
	"parkgate/pkg/config"
	"parkgate/pkg/logger"
	"parkgate/pkg/model"
	"testing"
	"time"
)

func newTestTable(t *testing.T, rates ...*model.Rate) *Table {
	t.Helper()

	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})

	cfg := &config.Config{
		Log:                 log,
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		RateRefreshInterval: time.Minute,
	}

	repo := repository.NewMemoryRateRepository()
	ctx := context.Background()
	for _, rate := range rates {
		if err := repo.Upsert(ctx, rate); err != nil {
			t.Fatalf("seed rate: %v", err)
		}
	}

	table := NewTable(repo, cfg)
	if err := table.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return table
}

func TestRateFor(t *testing.T) {
	table := newTestTable(t,
		&model.Rate{Category: model.CategoryCar, PerHourCents: 1000, Currency: "USD"},
		&model.Rate{Category: model.CategoryMotorcycle, PerHourCents: 400, Currency: "USD"},
	)

	rate, err := table.RateFor(model.CategoryCar)
	if err != nil {
		t.Fatalf("RateFor: %v", err)
	}
	if rate != 1000 {
		t.Errorf("expected 1000, got %d", rate)
	}

	_, err = table.RateFor(model.CategoryBus)
	if !errors.Is(err, pricingerrors.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestTable_Price(t *testing.T) {
	table := newTestTable(t,
		&model.Rate{Category: model.CategoryCar, PerHourCents: 1000, Currency: "USD"},
	)

	entry := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	fee, err := table.Price(model.CategoryCar, entry, entry.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if fee != 1500 {
		t.Errorf("expected 1500 cents, got %d", fee)
	}
}

func TestRefresh_PicksUpRateChanges(t *testing.T) {
	repo := repository.NewMemoryRateRepository()
	ctx := context.Background()

	if err := repo.Upsert(ctx, &model.Rate{Category: model.CategoryCar, PerHourCents: 1000, Currency: "USD"}); err != nil {
		t.Fatalf("seed rate: %v", err)
	}

	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	cfg := &config.Config{Log: log, ReadTimeout: 5 * time.Second, RateRefreshInterval: time.Minute}

	table := NewTable(repo, cfg)
	if err := table.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := repo.Upsert(ctx, &model.Rate{Category: model.CategoryCar, PerHourCents: 1200, Currency: "USD"}); err != nil {
		t.Fatalf("update rate: %v", err)
	}

	// Old snapshot until the next refresh.
	rate, err := table.RateFor(model.CategoryCar)
	if err != nil {
		t.Fatalf("RateFor: %v", err)
	}
	if rate != 1000 {
		t.Errorf("expected stale rate 1000 before refresh, got %d", rate)
	}

	if err := table.Refresh(ctx); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	rate, err = table.RateFor(model.CategoryCar)
	if err != nil {
		t.Fatalf("RateFor: %v", err)
	}
	if rate != 1200 {
		t.Errorf("expected refreshed rate 1200, got %d", rate)
	}
}

func TestTable_EmptyBeforeFirstRefresh(t *testing.T) {
	repo := repository.NewMemoryRateRepository()
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	cfg := &config.Config{Log: log, ReadTimeout: 5 * time.Second, RateRefreshInterval: time.Minute}

	table := NewTable(repo, cfg)

	_, err := table.RateFor(model.CategoryCar)
	if !errors.Is(err, pricingerrors.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}
