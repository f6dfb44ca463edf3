package queue

import (
	"context"
	"fmt"
	"parkgate/internal/gate/service"
	"parkgate/pkg/config"
	apperrors "parkgate/pkg/errors"
	"parkgate/pkg/kafka"
	"parkgate/pkg/model"
)

const (
	EventTypeEntry = "gate.entry.requested"
	EventTypeExit  = "gate.exit.requested"
)

// EventHandler consumes gate events from the gate-events topic and drives
// the same entry/exit protocol the HTTP handler does. Rejections that are
// the caller's fault (lot full, duplicate session, bad payload) become
// business errors so the consumer acks them instead of parking them on
// the DLQ.
type EventHandler struct {
	gate service.Gate
	cfg  *config.Config
}

func NewEventHandler(gate service.Gate, cfg *config.Config) *EventHandler {
	return &EventHandler{
		gate: gate,
		cfg:  cfg,
	}
}

func (h *EventHandler) Handle(ctx context.Context, msg kafka.Message) error {
	switch msg.GetEventType() {
	case EventTypeEntry:
		return h.handleEntry(ctx, msg)
	case EventTypeExit:
		return h.handleExit(ctx, msg)
	default:
		return kafka.NewPermanentError(
			fmt.Sprintf("unknown event type %q", msg.GetEventType()), nil)
	}
}

func (h *EventHandler) handleEntry(ctx context.Context, msg kafka.Message) error {
	var req model.EntryRequest
	if err := msg.DecodeValue(&req); err != nil {
		return kafka.NewPermanentError("failed to decode entry event", err)
	}

	result, err := h.gate.Entry(ctx, &req)
	if err != nil {
		return h.classify(err)
	}

	h.cfg.Log.Info("Entry event processed",
		"event_id", msg.GetEventID(),
		"vehicle_id", req.VehicleID,
		"session_id", result.SessionID,
		"spot_id", result.SpotID,
	)
	return nil
}

func (h *EventHandler) handleExit(ctx context.Context, msg kafka.Message) error {
	var req model.ExitRequest
	if err := msg.DecodeValue(&req); err != nil {
		return kafka.NewPermanentError("failed to decode exit event", err)
	}

	result, err := h.gate.Exit(ctx, &req)
	if err != nil {
		return h.classify(err)
	}

	h.cfg.Log.Info("Exit event processed",
		"event_id", msg.GetEventID(),
		"vehicle_id", req.VehicleID,
		"session_id", result.SessionID,
		"fee_cents", result.FeeCents,
	)
	return nil
}

func (h *EventHandler) classify(err error) error {
	if appErr := apperrors.AsAppError(err); appErr != nil {
		switch appErr.Code {
		case apperrors.CodeInternal, apperrors.CodeTimeout, apperrors.CodeUnavailable:
			return kafka.NewTransientError(appErr.Message, err)
		default:
			// Lot full, validation, duplicate session: replaying the
			// event cannot change the outcome.
			return kafka.NewBusinessError(appErr.Message, err)
		}
	}
	return kafka.NewTransientError("gate event processing failed", err)
}
