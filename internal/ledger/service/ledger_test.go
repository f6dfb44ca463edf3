package service

import (
	"context"
	"errors"
	ledgererrors "parkgate/internal/ledger/errors"
	"parkgate/internal/ledger/repository"
	"parkgate/pkg/config"
	"parkgate/pkg/logger"
	"parkgate/pkg/model"
	"testing"
	"time"
)

func newTestLedger(t *testing.T) Ledger {
	t.Helper()

	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})

	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		Currency:     "USD",
	}

	return NewLedgerService(repository.NewMemorySessionRepository(), cfg)
}

func TestOpen_SetsSessionFields(t *testing.T) {
	ledger := newTestLedger(t)
	entry := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	session, err := ledger.Open(context.Background(), "VH-1", "ABC123", model.CategoryCar, "F1-001", entry)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if session.ID == "" {
		t.Error("expected generated session ID")
	}
	if session.Status != model.SessionActive {
		t.Errorf("expected active status, got %s", session.Status)
	}
	if session.SpotID != "F1-001" || session.VehicleID != "VH-1" {
		t.Errorf("unexpected session: %+v", session)
	}
	if !session.EntryTime.Equal(entry) {
		t.Errorf("expected entry time %v, got %v", entry, session.EntryTime)
	}
}

func TestOpen_RejectsSecondActiveSession(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	entry := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	if _, err := ledger.Open(ctx, "VH-1", "ABC123", model.CategoryCar, "F1-001", entry); err != nil {
		t.Fatalf("first open: %v", err)
	}

	_, err := ledger.Open(ctx, "VH-1", "ABC123", model.CategoryCar, "F1-002", entry.Add(time.Minute))
	if !errors.Is(err, ledgererrors.ErrDuplicateActiveSession) {
		t.Fatalf("expected ErrDuplicateActiveSession, got %v", err)
	}
}

func TestOpen_AllowsNewSessionAfterClose(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	entry := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	first, err := ledger.Open(ctx, "VH-1", "ABC123", model.CategoryCar, "F1-001", entry)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := ledger.Close(ctx, first.ID, entry.Add(time.Hour), 1000); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := ledger.Open(ctx, "VH-1", "ABC123", model.CategoryCar, "F1-002", entry.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("reopen after close: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected a fresh session ID")
	}
}

func TestClose_IssuesReceipt(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	entry := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	exit := entry.Add(2 * time.Hour)

	session, err := ledger.Open(ctx, "VH-1", "ABC123", model.CategoryCar, "F1-001", entry)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	receipt, err := ledger.Close(ctx, session.ID, exit, 2000)
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	if receipt.SessionID != session.ID {
		t.Errorf("expected receipt for session %s, got %s", session.ID, receipt.SessionID)
	}
	if receipt.FeeCents != 2000 || receipt.Currency != "USD" {
		t.Errorf("unexpected receipt amount: %+v", receipt)
	}
	if !receipt.EntryTime.Equal(entry) || !receipt.ExitTime.Equal(exit) {
		t.Errorf("unexpected receipt times: %+v", receipt)
	}

	closed, err := ledger.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if closed.Status != model.SessionClosed {
		t.Errorf("expected closed status, got %s", closed.Status)
	}
	if closed.ExitTime == nil || !closed.ExitTime.Equal(exit) {
		t.Errorf("expected exit time stamped, got %v", closed.ExitTime)
	}
	if closed.FeeCents == nil || *closed.FeeCents != 2000 {
		t.Errorf("expected fee stamped, got %v", closed.FeeCents)
	}
}

func TestClose_AlreadyClosed(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	entry := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	session, err := ledger.Open(ctx, "VH-1", "ABC123", model.CategoryCar, "F1-001", entry)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := ledger.Close(ctx, session.ID, entry.Add(time.Hour), 1000); err != nil {
		t.Fatalf("first close: %v", err)
	}

	_, err = ledger.Close(ctx, session.ID, entry.Add(2*time.Hour), 2000)
	if !errors.Is(err, ledgererrors.ErrSessionAlreadyClosed) {
		t.Fatalf("expected ErrSessionAlreadyClosed, got %v", err)
	}
}

// A close that dies between stamping the session and writing the receipt
// leaves a closed session with no receipt; the next close finishes the job
// using the originally stamped exit time and fee.
func TestClose_ResumesAfterPartialClose(t *testing.T) {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		Currency:     "USD",
	}
	repo := repository.NewMemorySessionRepository()
	ledger := NewLedgerService(repo, cfg)

	ctx := context.Background()
	entry := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	firstExit := entry.Add(time.Hour)

	session, err := ledger.Open(ctx, "VH-1", "ABC123", model.CategoryCar, "F1-001", entry)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := repo.Close(ctx, session.ID, firstExit, 1000); err != nil {
		t.Fatalf("stamp close: %v", err)
	}

	receipt, err := ledger.Close(ctx, session.ID, entry.Add(2*time.Hour), 2000)
	if err != nil {
		t.Fatalf("close should resume a stamped session: %v", err)
	}
	if !receipt.ExitTime.Equal(firstExit) || receipt.FeeCents != 1000 {
		t.Errorf("expected receipt from the stored stamps, got %+v", receipt)
	}

	// A completed close still refuses a replay.
	_, err = ledger.Close(ctx, session.ID, entry.Add(3*time.Hour), 3000)
	if !errors.Is(err, ledgererrors.ErrSessionAlreadyClosed) {
		t.Fatalf("expected ErrSessionAlreadyClosed, got %v", err)
	}
}

func TestClose_UnknownSession(t *testing.T) {
	ledger := newTestLedger(t)

	_, err := ledger.Close(context.Background(), "nope", time.Now().UTC(), 0)
	if !errors.Is(err, ledgererrors.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestFindActive(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	entry := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	_, err := ledger.FindActive(ctx, "VH-1")
	if !errors.Is(err, ledgererrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}

	opened, err := ledger.Open(ctx, "VH-1", "ABC123", model.CategoryCar, "F1-001", entry)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	active, err := ledger.FindActive(ctx, "VH-1")
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if active.ID != opened.ID {
		t.Errorf("expected session %s, got %s", opened.ID, active.ID)
	}

	if _, err := ledger.Close(ctx, opened.ID, entry.Add(time.Hour), 1000); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err = ledger.FindActive(ctx, "VH-1")
	if !errors.Is(err, ledgererrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession after close, got %v", err)
	}
}

func TestGetReceipt(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	entry := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	_, err := ledger.GetReceipt(ctx, "nope")
	if !errors.Is(err, ledgererrors.ErrReceiptNotFound) {
		t.Fatalf("expected ErrReceiptNotFound, got %v", err)
	}

	session, err := ledger.Open(ctx, "VH-1", "ABC123", model.CategoryCar, "F1-001", entry)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	issued, err := ledger.Close(ctx, session.ID, entry.Add(time.Hour), 1000)
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := ledger.GetReceipt(ctx, session.ID)
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if got.ID != issued.ID {
		t.Errorf("expected receipt %s, got %s", issued.ID, got.ID)
	}
}

func TestListSessions(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	for i, vehicle := range []string{"VH-1", "VH-2", "VH-3"} {
		_, err := ledger.Open(ctx, vehicle, "PLT"+vehicle, model.CategoryCar, "F1-00"+vehicle, base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("open %s: %v", vehicle, err)
		}
	}

	sessions, total, err := ledger.ListSessions(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(sessions) != 2 {
		t.Errorf("expected page of 2, got %d", len(sessions))
	}
	// Newest entry first.
	if sessions[0].VehicleID != "VH-3" {
		t.Errorf("expected VH-3 first, got %s", sessions[0].VehicleID)
	}
}
