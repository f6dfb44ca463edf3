package repository

import (
	"context"
	"fmt"
	ledgererrors "parkgate/internal/ledger/errors"
	mongotx "parkgate/pkg/db/mongo"
	"parkgate/pkg/model"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// memorySessionRepository is the memory store driver's session ledger.
// A single mutex covers sessions and receipts, so ExecuteTransaction can
// rely on callers already being serialized per vehicle by the lock
// repository and simply run the function.
type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	receipts map[string]*model.Receipt
}

func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]*model.Session),
		receipts: make(map[string]*model.Receipt),
	}
}

func (r *memorySessionRepository) Insert(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sessions {
		if existing.VehicleID == session.VehicleID && existing.Active() {
			return fmt.Errorf("%w: %s", ledgererrors.ErrDuplicateActiveSession, session.VehicleID)
		}
	}

	session.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *memorySessionRepository) FindByID(_ context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[id]
	if !exists {
		return nil, ledgererrors.ErrSessionNotFound
	}

	copy := *session
	return &copy, nil
}

func (r *memorySessionRepository) FindActiveByVehicle(_ context.Context, vehicleID string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if session.VehicleID == vehicleID && session.Active() {
			copy := *session
			return &copy, nil
		}
	}
	return nil, ledgererrors.ErrNoActiveSession
}

func (r *memorySessionRepository) FindAll(_ context.Context, limit int, offset int64) ([]*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*model.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		copy := *session
		all = append(all, &copy)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].EntryTime.After(all[j].EntryTime) })

	if offset >= int64(len(all)) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memorySessionRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.sessions)), nil
}

func (r *memorySessionRepository) Close(_ context.Context, id string, exitTime time.Time, feeCents int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[id]
	if !exists {
		return ledgererrors.ErrSessionNotFound
	}
	if !session.Active() {
		return fmt.Errorf("%w: %s", ledgererrors.ErrSessionAlreadyClosed, id)
	}

	session.Status = model.SessionClosed
	session.ExitTime = &exitTime
	session.FeeCents = &feeCents
	return nil
}

func (r *memorySessionRepository) InsertReceipt(_ context.Context, receipt *model.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.receipts[receipt.SessionID]; exists {
		return fmt.Errorf("%w: %s", ledgererrors.ErrDuplicateReceipt, receipt.SessionID)
	}

	stored := *receipt
	r.receipts[receipt.SessionID] = &stored
	return nil
}

func (r *memorySessionRepository) FindReceiptBySession(_ context.Context, sessionID string) (*model.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	receipt, exists := r.receipts[sessionID]
	if !exists {
		return nil, ledgererrors.ErrReceiptNotFound
	}

	copy := *receipt
	return &copy, nil
}

// ExecuteTransaction runs fn directly. The memory driver has no rollback:
// a fn that fails midway leaves its earlier writes in place. The ledger
// tolerates this because a session stamped closed without its receipt is
// repaired by the resume path in the service's Close.
func (r *memorySessionRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type memoryVehicleLockRepository struct {
	mu    sync.Mutex
	locks map[string]time.Time
	ttl   time.Duration
}

func NewMemoryVehicleLockRepository(ttl time.Duration) VehicleLockRepository {
	return &memoryVehicleLockRepository{
		locks: make(map[string]time.Time),
		ttl:   ttl,
	}
}

func (r *memoryVehicleLockRepository) Acquire(_ context.Context, vehicleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if expires, held := r.locks[vehicleID]; held && now.Before(expires) {
		return fmt.Errorf("%w: %s", ledgererrors.ErrVehicleLocked, vehicleID)
	}

	r.locks[vehicleID] = now.Add(r.ttl)
	return nil
}

func (r *memoryVehicleLockRepository) Release(_ context.Context, vehicleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.locks, vehicleID)
	return nil
}
