package repository

import (
	"context"
	"fmt"
	"parkgate/pkg/config"
	"parkgate/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Rates"

type RateRepository interface {
	FindAll(ctx context.Context) ([]*model.Rate, error)
	Upsert(ctx context.Context, rate *model.Rate) error
}

type mongoRateRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRateRepository(cfg *config.Config) RateRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRateRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRateRepository) FindAll(ctx context.Context) ([]*model.Rate, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find rates: %w", err)
	}
	defer cursor.Close(ctx)

	var rates []*model.Rate
	if err = cursor.All(ctx, &rates); err != nil {
		return nil, fmt.Errorf("failed to decode rates: %w", err)
	}

	return rates, nil
}

func (r *mongoRateRepository) Upsert(ctx context.Context, rate *model.Rate) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	rate.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	filter := bson.M{"_id": rate.Category}
	update := bson.M{"$set": bson.M{
		"per_hour_cents": rate.PerHourCents,
		"currency":       rate.Currency,
		"updated_at":     rate.UpdatedAt,
	}}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert rate: %w", err)
	}
	return nil
}
