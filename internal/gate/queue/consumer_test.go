package queue

import (
	"context"
	"encoding/json"
	"errors"
	"parkgate/pkg/config"
	apperrors "parkgate/pkg/errors"
	"parkgate/pkg/kafka"
	"parkgate/pkg/logger"
	"parkgate/pkg/model"
	"testing"
)

type mockGate struct {
	entryFunc func(ctx context.Context, req *model.EntryRequest) (*model.EntryResult, error)
	exitFunc  func(ctx context.Context, req *model.ExitRequest) (*model.ExitResult, error)
}

func (m *mockGate) Entry(ctx context.Context, req *model.EntryRequest) (*model.EntryResult, error) {
	if m.entryFunc != nil {
		return m.entryFunc(ctx, req)
	}
	return &model.EntryResult{}, nil
}

func (m *mockGate) Exit(ctx context.Context, req *model.ExitRequest) (*model.ExitResult, error) {
	if m.exitFunc != nil {
		return m.exitFunc(ctx, req)
	}
	return &model.ExitResult{}, nil
}

func newTestEventHandler(gate *mockGate) *EventHandler {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return NewEventHandler(gate, &config.Config{Log: log})
}

func eventMessage(t *testing.T, eventType string, payload any) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return kafka.NewMessage().
		WithKey("VH1").
		WithRawValue(raw).
		WithEventType(eventType).
		WithSource("test").
		Build()
}

func TestHandle_EntryEvent(t *testing.T) {
	var received *model.EntryRequest
	gate := &mockGate{
		entryFunc: func(ctx context.Context, req *model.EntryRequest) (*model.EntryResult, error) {
			received = req
			return &model.EntryResult{SessionID: "sess-1", SpotID: "F1-001"}, nil
		},
	}
	handler := newTestEventHandler(gate)

	msg := eventMessage(t, EventTypeEntry, model.EntryRequest{
		VehicleID: "VH1",
		Plate:     "ABC123",
		Category:  model.CategoryCar,
	})

	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if received == nil || received.VehicleID != "VH1" {
		t.Errorf("expected entry request to reach the gate, got %+v", received)
	}
}

func TestHandle_ExitEvent(t *testing.T) {
	gate := &mockGate{
		exitFunc: func(ctx context.Context, req *model.ExitRequest) (*model.ExitResult, error) {
			return &model.ExitResult{SessionID: "sess-1", FeeCents: 1500}, nil
		},
	}
	handler := newTestEventHandler(gate)

	msg := eventMessage(t, EventTypeExit, model.ExitRequest{VehicleID: "VH1"})

	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
}

func TestHandle_UnknownEventType(t *testing.T) {
	handler := newTestEventHandler(&mockGate{})

	msg := eventMessage(t, "gate.unknown", model.ExitRequest{VehicleID: "VH1"})

	err := handler.Handle(context.Background(), msg)
	if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestHandle_LotFullIsBusinessError(t *testing.T) {
	gate := &mockGate{
		entryFunc: func(ctx context.Context, req *model.EntryRequest) (*model.EntryResult, error) {
			return nil, apperrors.LotFull("no spot available for this vehicle")
		},
	}
	handler := newTestEventHandler(gate)

	msg := eventMessage(t, EventTypeEntry, model.EntryRequest{
		VehicleID: "VH1",
		Plate:     "ABC123",
		Category:  model.CategoryCar,
	})

	err := handler.Handle(context.Background(), msg)
	if kafka.ClassifyError(err) != kafka.ErrorTypeBusiness {
		t.Fatalf("expected business error, got %v", err)
	}
}

// A category with no configured rate stays unpriceable on replay, so the
// consumer must ack the event instead of retrying it onto the DLQ.
func TestHandle_UnratedCategoryIsBusinessError(t *testing.T) {
	gate := &mockGate{
		entryFunc: func(ctx context.Context, req *model.EntryRequest) (*model.EntryResult, error) {
			return nil, apperrors.InvalidInput("no rate configured for vehicle category")
		},
	}
	handler := newTestEventHandler(gate)

	msg := eventMessage(t, EventTypeEntry, model.EntryRequest{
		VehicleID: "VH1",
		Plate:     "BUS123",
		Category:  model.CategoryBus,
	})

	err := handler.Handle(context.Background(), msg)
	if kafka.ClassifyError(err) != kafka.ErrorTypeBusiness {
		t.Fatalf("expected business error, got %v", err)
	}
}

func TestHandle_InternalIsTransientError(t *testing.T) {
	gate := &mockGate{
		exitFunc: func(ctx context.Context, req *model.ExitRequest) (*model.ExitResult, error) {
			return nil, apperrors.Internal("gate operation failed", errors.New("store down"))
		},
	}
	handler := newTestEventHandler(gate)

	msg := eventMessage(t, EventTypeExit, model.ExitRequest{VehicleID: "VH1"})

	err := handler.Handle(context.Background(), msg)
	if kafka.ClassifyError(err) != kafka.ErrorTypeTransient {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestHandle_MalformedPayload(t *testing.T) {
	handler := newTestEventHandler(&mockGate{})

	msg := kafka.NewMessage().
		WithKey("VH1").
		WithRawValue([]byte("{not json")).
		WithEventType(EventTypeEntry).
		Build()

	err := handler.Handle(context.Background(), msg)
	if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
		t.Fatalf("expected permanent error, got %v", err)
	}
}
