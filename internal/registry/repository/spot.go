package repository

import (
	"context"
	"errors"
	"fmt"
	registryerrors "parkgate/internal/registry/errors"
	"parkgate/pkg/config"
	"parkgate/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Spots"
)

type mongoSpotRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type SpotRepository interface {
	Insert(ctx context.Context, spot *model.Spot) error
	FindByID(ctx context.Context, id string) (*model.Spot, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Spot, error)
	FindAvailable(ctx context.Context, category model.VehicleCategory, constraints model.SpotConstraints) ([]*model.Spot, error)
	Claim(ctx context.Context, spotID string, vehicleID string, claimedAt time.Time) error
	Release(ctx context.Context, spotID string) error
	Count(ctx context.Context) (int64, error)
	CountAvailable(ctx context.Context) (int64, error)
}

func NewMongoSpotRepository(cfg *config.Config) SpotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSpotRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoSpotRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSpotRepository) Insert(ctx context.Context, spot *model.Spot) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if spot.Status == "" {
		spot.Status = model.SpotFree
	}
	_, err := r.collection.InsertOne(ctx, spot)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", registryerrors.ErrDuplicateSpot, spot.ID)
		}
		return fmt.Errorf("failed to insert spot: %w", err)
	}
	return nil
}

func (r *mongoSpotRepository) FindByID(ctx context.Context, id string) (*model.Spot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var spot model.Spot
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&spot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, registryerrors.ErrSpotNotFound
		}
		return nil, fmt.Errorf("failed to find spot: %w", err)
	}

	return &spot, nil
}

func (r *mongoSpotRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Spot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find spots: %w", err)
	}
	defer cursor.Close(ctx)

	var spots []*model.Spot
	if err = cursor.All(ctx, &spots); err != nil {
		return nil, fmt.Errorf("failed to decode spots: %w", err)
	}

	return spots, nil
}

// FindAvailable returns free spots matching the category and constraints,
// sorted by distance then spot ID so callers see a stable base ordering.
func (r *mongoSpotRepository) FindAvailable(ctx context.Context, category model.VehicleCategory, constraints model.SpotConstraints) ([]*model.Spot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":   model.SpotFree,
		"category": category,
	}
	if constraints.Accessible {
		filter["accessible"] = true
	}
	if constraints.Charging {
		filter["charging"] = true
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "distance_m", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find available spots: %w", err)
	}
	defer cursor.Close(ctx)

	var spots []*model.Spot
	if err = cursor.All(ctx, &spots); err != nil {
		return nil, fmt.Errorf("failed to decode available spots: %w", err)
	}

	return spots, nil
}

// Claim flips a spot from free to occupied in one compare-and-set update.
// The status filter makes the transition atomic: of any number of
// concurrent claimers, exactly one matches the free document.
func (r *mongoSpotRepository) Claim(ctx context.Context, spotID string, vehicleID string, claimedAt time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": spotID, "status": model.SpotFree}
	update := bson.M{
		"$set": bson.M{
			"status":     model.SpotOccupied,
			"vehicle_id": vehicleID,
			"claimed_at": claimedAt,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to claim spot: %w", err)
	}
	if result.MatchedCount == 0 {
		// Distinguish a lost race from a bogus ID.
		if _, findErr := r.FindByID(ctx, spotID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: %s", registryerrors.ErrClaimConflict, spotID)
	}

	return nil
}

// Release flips a spot back to free. Releasing an already-free spot
// returns ErrAlreadyFree so callers can treat the release as idempotent.
func (r *mongoSpotRepository) Release(ctx context.Context, spotID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": spotID, "status": model.SpotOccupied}
	update := bson.M{
		"$set":   bson.M{"status": model.SpotFree},
		"$unset": bson.M{"vehicle_id": "", "claimed_at": ""},
		"$inc":   bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release spot: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, findErr := r.FindByID(ctx, spotID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: %s", registryerrors.ErrAlreadyFree, spotID)
	}

	return nil
}

func (r *mongoSpotRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count spots: %w", err)
	}
	return count, nil
}

func (r *mongoSpotRepository) CountAvailable(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"status": model.SpotFree})
	if err != nil {
		return 0, fmt.Errorf("failed to count available spots: %w", err)
	}
	return count, nil
}
