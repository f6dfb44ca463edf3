package main

import (
	"context"
	"parkgate/internal/allocation"
	gatehandler "parkgate/internal/gate/handler"
	"parkgate/internal/gate/queue"
	gateservice "parkgate/internal/gate/service"
	gatevalidator "parkgate/internal/gate/validator"
	ledgerrepo "parkgate/internal/ledger/repository"
	ledgerservice "parkgate/internal/ledger/service"
	"parkgate/internal/pricing"
	pricingrepo "parkgate/internal/pricing/repository"
	registryrepo "parkgate/internal/registry/repository"
	registryservice "parkgate/internal/registry/service"
	"parkgate/pkg/app"
	"parkgate/pkg/config"
	"parkgate/pkg/kafka"
	kafkaconfig "parkgate/pkg/kafka/config"
	kafkamiddleware "parkgate/pkg/kafka/middleware"
)

const ServiceName = "gateway"

func main() {
	cfg := config.Load(ServiceName)

	if cfg.StoreDriver == config.StoreDriverMongo {
		cfg.SetMongo()
		defer cfg.GracefulShutdown()
	}

	cfg.Log.Info("Starting gateway service", "store_driver", cfg.StoreDriver)

	gate, registry, ledger, rates := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.AddWorker(rates.Start)

	if cfg.KafkaEnabled {
		consumer := initGateConsumer(cfg, gate)
		serverApp.AddWorker(func(ctx context.Context) {
			if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
				cfg.Log.Error("Gate events consumer stopped", "error", err)
			}
		})
	}

	serverApp.SetApp(gatehandler.NewGateHandler(gate, registry, ledger, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (gateservice.Gate, registryservice.Registry, ledgerservice.Ledger, *pricing.Table) {
	var (
		spotRepo    registryrepo.SpotRepository
		sessionRepo ledgerrepo.SessionRepository
		lockRepo    ledgerrepo.VehicleLockRepository
		rateRepo    pricingrepo.RateRepository
	)

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		spotRepo = registryrepo.NewMemorySpotRepository()
		sessionRepo = ledgerrepo.NewMemorySessionRepository()
		lockRepo = ledgerrepo.NewMemoryVehicleLockRepository(cfg.VehicleLockTTL)
		rateRepo = pricingrepo.NewMemoryRateRepository()
	default:
		spotRepo = registryrepo.NewMongoSpotRepository(cfg)
		sessionRepo = ledgerrepo.NewMongoSessionRepository(cfg)
		lockRepo = ledgerrepo.NewMongoVehicleLockRepository(cfg)
		rateRepo = pricingrepo.NewMongoRateRepository(cfg)
	}

	registry := registryservice.NewRegistryService(spotRepo, cfg)

	strategy, err := allocation.NewStrategy(cfg.AllocationStrategy)
	if err != nil {
		cfg.Log.Fatal("Invalid allocation strategy", "strategy", cfg.AllocationStrategy, "error", err)
	}
	engine := allocation.NewEngine(registry, strategy, cfg)

	ledger := ledgerservice.NewLedgerService(sessionRepo, cfg)

	rates := pricing.NewTable(rateRepo, cfg)
	if err := rates.Refresh(context.Background()); err != nil {
		cfg.Log.Fatal("Failed to load rate table", "error", err)
	}

	var publisher gateservice.ReceiptPublisher
	if cfg.KafkaEnabled {
		publisher = initReceiptPublisher(cfg)
	}

	gateValidator := gatevalidator.NewGateValidator(cfg.Log)
	gate := gateservice.NewGateService(engine, registry, ledger, rates, lockRepo, gateValidator, publisher, cfg)

	cfg.Log.Info("Gateway services initialized",
		"strategy", strategy.Name(),
		"database", cfg.MongoDatabaseName,
	)
	return gate, registry, ledger, rates
}

func initReceiptPublisher(cfg *config.Config) gateservice.ReceiptPublisher {
	kafkaCfg := kafkaconfig.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.ReceiptsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create receipts producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Receipts publisher initialized", "topic", cfg.ReceiptsTopic)
	return queue.NewReceiptPublisher(producer, cfg)
}

func initGateConsumer(cfg *config.Config, gate gateservice.Gate) *kafka.Consumer {
	kafkaCfg := kafkaconfig.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	eventHandler := queue.NewEventHandler(gate, cfg)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.GateEventsTopic,
		cfg.GateEventsGroupID,
		cfg.GateEventsDLQTopic,
		eventHandler.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create gate events consumer", "error", err)
	}
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))

	cfg.Log.Info("Gate events consumer initialized",
		"topic", cfg.GateEventsTopic,
		"group_id", cfg.GateEventsGroupID,
		"dlq_topic", cfg.GateEventsDLQTopic,
	)
	return consumer
}
