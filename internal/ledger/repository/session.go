package repository

import (
	"context"
	"errors"
	"fmt"
	ledgererrors "parkgate/internal/ledger/errors"
	"parkgate/pkg/config"
	mongotx "parkgate/pkg/db/mongo"
	"parkgate/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName        = "Sessions"
	ReceiptCollectionName = "Receipts"
)

type mongoSessionRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	receipts   *mongo.Collection
	txManager  mongotx.TransactionManager
}

type SessionRepository interface {
	Insert(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	FindActiveByVehicle(ctx context.Context, vehicleID string) (*model.Session, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Session, error)
	Count(ctx context.Context) (int64, error)
	Close(ctx context.Context, id string, exitTime time.Time, feeCents int64) error
	InsertReceipt(ctx context.Context, receipt *model.Receipt) error
	FindReceiptBySession(ctx context.Context, sessionID string) (*model.Receipt, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoSessionRepository(cfg *config.Config) SessionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSessionRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		receipts:   db.Collection(ReceiptCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoSessionRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSessionRepository) Insert(ctx context.Context, session *model.Session) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	session.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	_, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		// The unique partial index on (vehicle_id, status=active) is the
		// backstop for the one-session-per-vehicle rule.
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ledgererrors.ErrDuplicateActiveSession, session.VehicleID)
		}
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *mongoSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledgererrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return &session, nil
}

func (r *mongoSessionRepository) FindActiveByVehicle(ctx context.Context, vehicleID string) (*model.Session, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"vehicle_id": vehicleID, "status": model.SessionActive}

	var session model.Session
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledgererrors.ErrNoActiveSession
		}
		return nil, fmt.Errorf("failed to find active session: %w", err)
	}

	return &session, nil
}

func (r *mongoSessionRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Session, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "entry_time", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}

	return sessions, nil
}

func (r *mongoSessionRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// Close flips a session from active to closed in one compare-and-set
// update, stamping the exit time and fee. Closing twice is rejected.
func (r *mongoSessionRepository) Close(ctx context.Context, id string, exitTime time.Time, feeCents int64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": model.SessionActive}
	update := bson.M{
		"$set": bson.M{
			"status":    model.SessionClosed,
			"exit_time": exitTime,
			"fee_cents": feeCents,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: %s", ledgererrors.ErrSessionAlreadyClosed, id)
	}

	return nil
}

func (r *mongoSessionRepository) InsertReceipt(ctx context.Context, receipt *model.Receipt) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.receipts.InsertOne(ctx, receipt)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ledgererrors.ErrDuplicateReceipt, receipt.SessionID)
		}
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

func (r *mongoSessionRepository) FindReceiptBySession(ctx context.Context, sessionID string) (*model.Receipt, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var receipt model.Receipt
	err := r.receipts.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&receipt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledgererrors.ErrReceiptNotFound
		}
		return nil, fmt.Errorf("failed to find receipt: %w", err)
	}

	return &receipt, nil
}

func (r *mongoSessionRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
