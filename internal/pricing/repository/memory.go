package repository

import (
	"context"
	"parkgate/pkg/model"
	"sync"
	"time"
)

type memoryRateRepository struct {
	mu    sync.Mutex
	rates map[model.VehicleCategory]*model.Rate
}

func NewMemoryRateRepository() RateRepository {
	return &memoryRateRepository{
		rates: make(map[model.VehicleCategory]*model.Rate),
	}
}

func (r *memoryRateRepository) FindAll(_ context.Context) ([]*model.Rate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*model.Rate, 0, len(r.rates))
	for _, rate := range r.rates {
		copy := *rate
		all = append(all, &copy)
	}
	return all, nil
}

func (r *memoryRateRepository) Upsert(_ context.Context, rate *model.Rate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rate.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	stored := *rate
	r.rates[rate.Category] = &stored
	return nil
}
