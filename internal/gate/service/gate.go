package service

import (
	"context"
	"errors"
	"parkgate/internal/allocation"
	gatevalidator "parkgate/internal/gate/validator"
	ledgererrors "parkgate/internal/ledger/errors"
	ledgerrepo "parkgate/internal/ledger/repository"
	ledgerservice "parkgate/internal/ledger/service"
	"parkgate/internal/pricing"
	pricingerrors "parkgate/internal/pricing/errors"
	registryerrors "parkgate/internal/registry/errors"
	registryservice "parkgate/internal/registry/service"
	"parkgate/pkg/config"
	apperrors "parkgate/pkg/errors"
	"parkgate/pkg/model"
	"time"
)

// ReceiptPublisher pushes issued receipts to downstream consumers.
// Publishing is best-effort: a delivery failure never rolls back an exit.
type ReceiptPublisher interface {
	PublishReceipt(ctx context.Context, receipt *model.Receipt) error
}

// Gate runs the two-phase entry and exit protocols. Each operation holds
// the per-vehicle advisory lock for its whole span, so one vehicle never
// has two gate operations in flight.
type Gate interface {
	Entry(ctx context.Context, req *model.EntryRequest) (*model.EntryResult, error)
	Exit(ctx context.Context, req *model.ExitRequest) (*model.ExitResult, error)
}

type gateService struct {
	engine    allocation.Engine
	registry  registryservice.Registry
	ledger    ledgerservice.Ledger
	rates     *pricing.Table
	locks     ledgerrepo.VehicleLockRepository
	validator *gatevalidator.GateValidator
	publisher ReceiptPublisher
	cfg       *config.Config
	now       func() time.Time
}

func NewGateService(
	engine allocation.Engine,
	registry registryservice.Registry,
	ledger ledgerservice.Ledger,
	rates *pricing.Table,
	locks ledgerrepo.VehicleLockRepository,
	validator *gatevalidator.GateValidator,
	publisher ReceiptPublisher,
	cfg *config.Config,
) Gate {
	return &gateService{
		engine:    engine,
		registry:  registry,
		ledger:    ledger,
		rates:     rates,
		locks:     locks,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *gateService) Entry(ctx context.Context, req *model.EntryRequest) (*model.EntryResult, error) {
	if err := s.validator.ValidateEntry(req); err != nil {
		return nil, apperrors.Validation("invalid entry request", map[string]any{"error": err.Error()})
	}

	if err := s.locks.Acquire(ctx, req.VehicleID); err != nil {
		return nil, s.mapError(err)
	}
	defer func() {
		if releaseErr := s.locks.Release(ctx, req.VehicleID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release vehicle lock", "vehicle_id", req.VehicleID, "error", releaseErr)
		}
	}()

	// A vehicle the lot cannot price must never be admitted; its exit
	// would have no fee to compute.
	if _, err := s.rates.RateFor(req.Category); err != nil {
		return nil, s.mapError(err)
	}

	if _, err := s.ledger.FindActive(ctx, req.VehicleID); err == nil {
		return nil, apperrors.Conflict("vehicle already has an active session")
	} else if !errors.Is(err, ledgererrors.ErrNoActiveSession) {
		return nil, s.mapError(err)
	}

	spot, err := s.engine.Allocate(ctx, req.VehicleID, req.Category, req.Constraints)
	if err != nil {
		return nil, s.mapError(err)
	}

	entryTime := s.now()
	session, err := s.ledger.Open(ctx, req.VehicleID, req.Plate, req.Category, spot.ID, entryTime)
	if err != nil {
		// The spot is claimed but the session never opened; hand the
		// spot back so the failure leaves no trace.
		if _, releaseErr := s.registry.Release(ctx, spot.ID); releaseErr != nil {
			s.cfg.Log.Error("Compensating release failed, spot leaked",
				"spot_id", spot.ID,
				"vehicle_id", req.VehicleID,
				"error", releaseErr,
			)
		}
		return nil, s.mapError(err)
	}

	s.cfg.Log.Info("Vehicle admitted",
		"vehicle_id", req.VehicleID,
		"session_id", session.ID,
		"spot_id", spot.ID,
	)

	return &model.EntryResult{
		SessionID: session.ID,
		SpotID:    spot.ID,
		Floor:     spot.Floor,
		EntryTime: entryTime,
	}, nil
}

func (s *gateService) Exit(ctx context.Context, req *model.ExitRequest) (*model.ExitResult, error) {
	if err := s.validator.ValidateExit(req); err != nil {
		return nil, apperrors.Validation("invalid exit request", map[string]any{"error": err.Error()})
	}

	if err := s.locks.Acquire(ctx, req.VehicleID); err != nil {
		return nil, s.mapError(err)
	}
	defer func() {
		if releaseErr := s.locks.Release(ctx, req.VehicleID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release vehicle lock", "vehicle_id", req.VehicleID, "error", releaseErr)
		}
	}()

	session, err := s.ledger.FindActive(ctx, req.VehicleID)
	if err != nil {
		return nil, s.mapError(err)
	}

	exitTime := s.now()
	fee, err := s.rates.Price(session.Category, session.EntryTime, exitTime)
	if err != nil {
		return nil, s.mapError(err)
	}

	// Free the spot first so it goes back into circulation even if the
	// ledger write needs retries. Already-free is fine; a crashed earlier
	// exit may have got this far.
	if _, err := s.registry.Release(ctx, session.SpotID); err != nil {
		if !errors.Is(err, registryerrors.ErrSpotNotFound) {
			return nil, s.mapError(err)
		}
		s.cfg.Log.Warn("Session references unknown spot", "session_id", session.ID, "spot_id", session.SpotID)
	}

	receipt, err := s.closeWithRetry(ctx, session.ID, exitTime, fee)
	if err != nil {
		// The vehicle is still inside but its spot was handed back.
		// Re-claim it so spot state and ledger state stay consistent.
		if claimErr := s.registry.Claim(ctx, session.SpotID, session.VehicleID); claimErr != nil &&
			!errors.Is(claimErr, registryerrors.ErrClaimConflict) {
			s.cfg.Log.Error("Failed to restore spot after close failure",
				"spot_id", session.SpotID,
				"session_id", session.ID,
				"error", claimErr,
			)
		}
		return nil, s.mapError(err)
	}

	if s.publisher != nil {
		if pubErr := s.publisher.PublishReceipt(ctx, receipt); pubErr != nil {
			s.cfg.Log.Warn("Failed to publish receipt", "receipt_id", receipt.ID, "error", pubErr)
		}
	}

	s.cfg.Log.Info("Vehicle released",
		"vehicle_id", req.VehicleID,
		"session_id", session.ID,
		"fee_cents", fee,
	)

	return &model.ExitResult{
		SessionID: session.ID,
		ReceiptID: receipt.ID,
		SpotID:    session.SpotID,
		FeeCents:  fee,
		Currency:  receipt.Currency,
		EntryTime: session.EntryTime,
		ExitTime:  exitTime,
	}, nil
}

func (s *gateService) closeWithRetry(ctx context.Context, sessionID string, exitTime time.Time, fee int64) (*model.Receipt, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.SessionCloseRetries; attempt++ {
		receipt, err := s.ledger.Close(ctx, sessionID, exitTime, fee)
		if err == nil {
			return receipt, nil
		}
		// Terminal ledger states never heal with a retry.
		if errors.Is(err, ledgererrors.ErrSessionNotFound) || errors.Is(err, ledgererrors.ErrSessionAlreadyClosed) {
			return nil, err
		}

		lastErr = err
		s.cfg.Log.Warn("Session close failed, retrying",
			"session_id", sessionID,
			"attempt", attempt,
			"error", err,
		)
	}
	return nil, lastErr
}

func (s *gateService) mapError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}

	switch {
	case errors.Is(err, registryerrors.ErrNoSpotAvailable):
		return apperrors.LotFull("no spot available for this vehicle")
	case errors.Is(err, ledgererrors.ErrVehicleLocked):
		return apperrors.Conflict("another gate operation is in progress for this vehicle")
	case errors.Is(err, ledgererrors.ErrDuplicateActiveSession):
		return apperrors.Conflict("vehicle already has an active session")
	case errors.Is(err, ledgererrors.ErrNoActiveSession):
		return apperrors.NotFound("active session")
	case errors.Is(err, ledgererrors.ErrSessionNotFound):
		return apperrors.NotFound("session")
	case errors.Is(err, ledgererrors.ErrSessionAlreadyClosed):
		return apperrors.Conflict("session already closed")
	case errors.Is(err, pricingerrors.ErrUnknownCategory):
		// A missing rate is a configuration gap, not a store fault;
		// replaying the request cannot change the outcome.
		return apperrors.InvalidInput("no rate configured for vehicle category")
	case errors.Is(err, pricingerrors.ErrInvalidDuration):
		return apperrors.InvalidInput("exit time precedes entry time")
	default:
		return apperrors.Internal("gate operation failed", err)
	}
}
