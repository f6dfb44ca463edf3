package repository

import (
	"context"
	"fmt"
	ledgererrors "parkgate/internal/ledger/errors"
	"parkgate/pkg/config"
	"parkgate/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Vehicle_locks"

// VehicleLockRepository provides per-vehicle advisory locks. The lock is a
// document whose _id is the vehicle ID; the unique _id index makes acquire
// atomic, and a TTL index on expires_at reaps locks left by crashed gates.
type VehicleLockRepository interface {
	Acquire(ctx context.Context, vehicleID string) error
	Release(ctx context.Context, vehicleID string) error
}

type mongoVehicleLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoVehicleLockRepository(cfg *config.Config) VehicleLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoVehicleLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoVehicleLockRepository) Acquire(ctx context.Context, vehicleID string) error {
	now := time.Now().UTC()
	lock := &model.VehicleLock{
		ID:        vehicleID,
		ExpiresAt: now.Add(r.cfg.VehicleLockTTL),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ledgererrors.ErrVehicleLocked, vehicleID)
		}
		return fmt.Errorf("failed to acquire vehicle lock: %w", err)
	}
	return nil
}

func (r *mongoVehicleLockRepository) Release(ctx context.Context, vehicleID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": vehicleID})
	if err != nil {
		return fmt.Errorf("failed to release vehicle lock: %w", err)
	}
	return nil
}
