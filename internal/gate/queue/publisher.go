package queue

import (
	"context"
	"parkgate/pkg/config"
	"parkgate/pkg/kafka"
	"parkgate/pkg/model"
)

const EventTypeReceiptIssued = "gate.receipt.issued"

// ReceiptPublisher emits one event per issued receipt, keyed by vehicle so
// a vehicle's receipts stay ordered within a partition.
type ReceiptPublisher struct {
	producer *kafka.Producer
	cfg      *config.Config
}

func NewReceiptPublisher(producer *kafka.Producer, cfg *config.Config) *ReceiptPublisher {
	return &ReceiptPublisher{
		producer: producer,
		cfg:      cfg,
	}
}

func (p *ReceiptPublisher) PublishReceipt(ctx context.Context, receipt *model.Receipt) error {
	msg := kafka.NewMessage().
		WithKey(receipt.VehicleID).
		WithValue(receipt).
		WithEventType(EventTypeReceiptIssued).
		WithSource("gateway").
		Build()

	return p.producer.Publish(ctx, msg)
}

func (p *ReceiptPublisher) Close() error {
	return p.producer.Close()
}
