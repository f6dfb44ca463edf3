package service

import (
	"context"
	"errors"
	ledgererrors "parkgate/internal/ledger/errors"
	"parkgate/internal/ledger/repository"
	"parkgate/pkg/config"
	"parkgate/pkg/model"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// Ledger is the source of truth for parking sessions. Open enforces the
// one-active-session-per-vehicle rule; Close stamps the session terminal
// and issues the receipt. Callers serialize per vehicle with the advisory
// lock before calling Open or Close.
type Ledger interface {
	Open(ctx context.Context, vehicleID string, plate string, category model.VehicleCategory, spotID string, entryTime time.Time) (*model.Session, error)
	Close(ctx context.Context, sessionID string, exitTime time.Time, feeCents int64) (*model.Receipt, error)
	FindActive(ctx context.Context, vehicleID string) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListSessions(ctx context.Context, limit int, offset int64) ([]*model.Session, int64, error)
	GetReceipt(ctx context.Context, sessionID string) (*model.Receipt, error)
}

type ledgerService struct {
	repo repository.SessionRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewLedgerService(repo repository.SessionRepository, cfg *config.Config) Ledger {
	return &ledgerService{
		repo: repo,
		cfg:  cfg,
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *ledgerService) Open(ctx context.Context, vehicleID string, plate string, category model.VehicleCategory, spotID string, entryTime time.Time) (*model.Session, error) {
	session := &model.Session{
		ID:        uuid.NewString(),
		VehicleID: vehicleID,
		Plate:     plate,
		Category:  category,
		SpotID:    spotID,
		EntryTime: entryTime,
		Status:    model.SessionActive,
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		_, err := s.repo.FindActiveByVehicle(sessCtx, vehicleID)
		if err == nil {
			return ledgererrors.ErrDuplicateActiveSession
		}
		if !errors.Is(err, ledgererrors.ErrNoActiveSession) {
			return err
		}

		return s.repo.Insert(sessCtx, session)
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Session opened",
		"session_id", session.ID,
		"vehicle_id", vehicleID,
		"spot_id", spotID,
	)
	return session, nil
}

func (s *ledgerService) Close(ctx context.Context, sessionID string, exitTime time.Time, feeCents int64) (*model.Receipt, error) {
	var receipt *model.Receipt

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Close(sessCtx, sessionID, exitTime, feeCents); err != nil {
			if !errors.Is(err, ledgererrors.ErrSessionAlreadyClosed) {
				return err
			}
			// A closed session with no receipt means an earlier close
			// stamped the session and failed before its receipt landed.
			// Resume from the stored stamps instead of refusing.
			if _, findErr := s.repo.FindReceiptBySession(sessCtx, sessionID); findErr == nil {
				return err
			} else if !errors.Is(findErr, ledgererrors.ErrReceiptNotFound) {
				return findErr
			}
		}

		session, err := s.repo.FindByID(sessCtx, sessionID)
		if err != nil {
			return err
		}

		receiptExit, receiptFee := exitTime, feeCents
		if session.ExitTime != nil {
			receiptExit = *session.ExitTime
		}
		if session.FeeCents != nil {
			receiptFee = *session.FeeCents
		}

		receipt = &model.Receipt{
			ID:        uuid.NewString(),
			SessionID: session.ID,
			VehicleID: session.VehicleID,
			Plate:     session.Plate,
			SpotID:    session.SpotID,
			EntryTime: session.EntryTime,
			ExitTime:  receiptExit,
			FeeCents:  receiptFee,
			Currency:  s.cfg.Currency,
			IssuedAt:  s.now(),
		}
		return s.repo.InsertReceipt(sessCtx, receipt)
	})
	if err != nil {
		// A session closed by a retried exit already has its receipt.
		if errors.Is(err, ledgererrors.ErrDuplicateReceipt) {
			return s.repo.FindReceiptBySession(ctx, sessionID)
		}
		return nil, err
	}

	s.cfg.Log.Info("Session closed",
		"session_id", sessionID,
		"fee_cents", feeCents,
	)
	return receipt, nil
}

func (s *ledgerService) FindActive(ctx context.Context, vehicleID string) (*model.Session, error) {
	return s.repo.FindActiveByVehicle(ctx, vehicleID)
}

func (s *ledgerService) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ledgerService) ListSessions(ctx context.Context, limit int, offset int64) ([]*model.Session, int64, error) {
	sessions, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (s *ledgerService) GetReceipt(ctx context.Context, sessionID string) (*model.Receipt, error) {
	return s.repo.FindReceiptBySession(ctx, sessionID)
}
