package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	mongoMigration "parkgate/internal/migrations/mongo"
	"parkgate/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	seed := flag.Bool("seed", false, "seed default rates and a demo spot layout after migrating")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	cfg.Log.Info("Starting Mongo migration job")
	defer cfg.GracefulShutdown()

	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	if *seed {
		if err := mongoMigration.SeedRates(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName); err != nil {
			cfg.Log.Fatal("Rate seed failed", "error", err)
		}
		if err := mongoMigration.SeedSpots(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName); err != nil {
			cfg.Log.Fatal("Spot seed failed", "error", err)
		}
	}

	fmt.Println("Migration completed successfully.")
}
