package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"parkgate/pkg/model"
)

var defaultRates = []model.Rate{
	{Category: model.CategoryMotorcycle, PerHourCents: 400, Currency: "USD"},
	{Category: model.CategoryCar, PerHourCents: 1000, Currency: "USD"},
	{Category: model.CategoryBus, PerHourCents: 2500, Currency: "USD"},
}

// SeedRates upserts the default rate table. Existing rates are updated,
// so re-running the seed resets prices to the defaults.
func SeedRates(ctx context.Context, client *mongo.Client, dbName string) error {
	coll := client.Database(dbName).Collection("Rates")

	for _, rate := range defaultRates {
		rate.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
		filter := bson.M{"_id": rate.Category}
		update := bson.M{"$set": bson.M{
			"per_hour_cents": rate.PerHourCents,
			"currency":       rate.Currency,
			"updated_at":     rate.UpdatedAt,
		}}
		_, err := coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("failed to seed rate for %s: %w", rate.Category, err)
		}
	}

	fmt.Printf("💰 Seeded %d rates\n", len(defaultRates))
	return nil
}

// SeedSpots inserts a small demo lot: two floors of cars, a motorcycle row
// and two bus bays. Spots that already exist are left untouched.
func SeedSpots(ctx context.Context, client *mongo.Client, dbName string) error {
	coll := client.Database(dbName).Collection("Spots")

	var spots []model.Spot
	for floor := 1; floor <= 2; floor++ {
		for n := 1; n <= 10; n++ {
			spots = append(spots, model.Spot{
				ID:         fmt.Sprintf("F%d-C%02d", floor, n),
				Floor:      floor,
				Category:   model.CategoryCar,
				Accessible: n <= 2,
				Charging:   n > 8,
				DistanceM:  (floor-1)*50 + n*5,
				Status:     model.SpotFree,
			})
		}
	}
	for n := 1; n <= 6; n++ {
		spots = append(spots, model.Spot{
			ID:        fmt.Sprintf("F1-M%02d", n),
			Floor:     1,
			Category:  model.CategoryMotorcycle,
			DistanceM: 60 + n*2,
			Status:    model.SpotFree,
		})
	}
	for n := 1; n <= 2; n++ {
		spots = append(spots, model.Spot{
			ID:        fmt.Sprintf("F1-B%02d", n),
			Floor:     1,
			Category:  model.CategoryBus,
			DistanceM: 80 + n*10,
			Status:    model.SpotFree,
		})
	}

	inserted := 0
	for _, spot := range spots {
		_, err := coll.InsertOne(ctx, spot)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("failed to seed spot %s: %w", spot.ID, err)
		}
		inserted++
	}

	fmt.Printf("🅿️ Seeded %d spots (%d already present)\n", inserted, len(spots)-inserted)
	return nil
}
