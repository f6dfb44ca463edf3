package pricing

import (
	"context"
	"fmt"
	pricingerrors "parkgate/internal/pricing/errors"
	"parkgate/internal/pricing/repository"
	"parkgate/pkg/config"
	"parkgate/pkg/model"
	"sync/atomic"
	"time"
)

// Table holds the hourly rates per vehicle category. Lookups read an
// immutable snapshot, so pricing stays wait-free on the request path while
// a background loop refreshes from the store.
type Table struct {
	repo     repository.RateRepository
	cfg      *config.Config
	snapshot atomic.Value
}

func NewTable(repo repository.RateRepository, cfg *config.Config) *Table {
	t := &Table{
		repo: repo,
		cfg:  cfg,
	}
	t.snapshot.Store(map[model.VehicleCategory]int64{})
	return t
}

// Refresh replaces the snapshot with the current store contents.
func (t *Table) Refresh(ctx context.Context) error {
	rates, err := t.repo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh rate table: %w", err)
	}

	next := make(map[model.VehicleCategory]int64, len(rates))
	for _, rate := range rates {
		next[rate.Category] = rate.PerHourCents
	}
	t.snapshot.Store(next)

	t.cfg.Log.Debug("Rate table refreshed", "categories", len(next))
	return nil
}

// Start runs the refresh loop until the context is cancelled. A failed
// refresh keeps the previous snapshot; pricing never goes dark because
// the store had a bad moment.
func (t *Table) Start(ctx context.Context) {
	ticker := time.NewTicker(t.cfg.RateRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.Refresh(ctx); err != nil {
				t.cfg.Log.Warn("Rate refresh failed, keeping previous rates", "error", err)
			}
		}
	}
}

// RateFor returns the hourly rate in cents for a category.
func (t *Table) RateFor(category model.VehicleCategory) (int64, error) {
	rates := t.snapshot.Load().(map[model.VehicleCategory]int64)
	rate, ok := rates[category]
	if !ok {
		return 0, fmt.Errorf("%w: %s", pricingerrors.ErrUnknownCategory, category)
	}
	return rate, nil
}

// Price computes the fee for a stay using the current rate for the category.
func (t *Table) Price(category model.VehicleCategory, entry time.Time, exit time.Time) (int64, error) {
	rate, err := t.RateFor(category)
	if err != nil {
		return 0, err
	}
	return ComputeFee(entry, exit, rate)
}
