package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	apperrors "parkgate/pkg/errors"
	"parkgate/pkg/logger"
	"parkgate/pkg/model"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
)

// Mock gate service for testing
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

func newTestHandler(gate *mockGate) *GateHandler {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return &GateHandler{
		gate: gate,
		log:  log,
	}
}

func TestEntry_Success(t *testing.T) {
	entryTime := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	gate := &mockGate{
		entryFunc: func(ctx context.Context, req *model.EntryRequest) (*model.EntryResult, error) {
			if req.VehicleID != "VH1" {
				t.Errorf("expected VH1, got %s", req.VehicleID)
			}
			return &model.EntryResult{
				SessionID: "sess-1",
				SpotID:    "F1-001",
				Floor:     1,
				EntryTime: entryTime,
			}, nil
		},
	}
	handler := newTestHandler(gate)

	body, _ := json.Marshal(model.EntryRequest{
		VehicleID: "VH1",
		Plate:     "ABC123",
		Category:  model.CategoryCar,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gate/entry", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Entry(rec, req, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var result model.EntryResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.SpotID != "F1-001" || result.SessionID != "sess-1" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestEntry_MalformedBody(t *testing.T) {
	handler := newTestHandler(&mockGate{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/gate/entry", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	handler.Entry(rec, req, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEntry_LotFullStatusCode(t *testing.T) {
	gate := &mockGate{
		entryFunc: func(ctx context.Context, req *model.EntryRequest) (*model.EntryResult, error) {
			return nil, apperrors.LotFull("no spot available for this vehicle")
		},
	}
	handler := newTestHandler(gate)

	body, _ := json.Marshal(model.EntryRequest{
		VehicleID: "VH1",
		Plate:     "ABC123",
		Category:  model.CategoryCar,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gate/entry", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Entry(rec, req, nil)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestExit_Success(t *testing.T) {
	gate := &mockGate{
		exitFunc: func(ctx context.Context, req *model.ExitRequest) (*model.ExitResult, error) {
			return &model.ExitResult{
				SessionID: "sess-1",
				ReceiptID: "rcpt-1",
				SpotID:    "F1-001",
				FeeCents:  2000,
				Currency:  "USD",
			}, nil
		},
	}
	handler := newTestHandler(gate)

	body, _ := json.Marshal(model.ExitRequest{VehicleID: "VH1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gate/exit", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Exit(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result model.ExitResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.FeeCents != 2000 || result.ReceiptID != "rcpt-1" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestExit_NoActiveSessionStatusCode(t *testing.T) {
	gate := &mockGate{
		exitFunc: func(ctx context.Context, req *model.ExitRequest) (*model.ExitResult, error) {
			return nil, apperrors.NotFound("active session")
		},
	}
	handler := newTestHandler(gate)

	body, _ := json.Marshal(model.ExitRequest{VehicleID: "VH1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gate/exit", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Exit(rec, req, nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRegisterRoutes(t *testing.T) {
	handler := newTestHandler(&mockGate{})
	router := httprouter.New()

	// Routes must register without panicking on conflicts.
	handler.RegisterRoutes(router)

	h, _, _ := router.Lookup(http.MethodPost, "/api/v1/gate/entry")
	if h == nil {
		t.Error("entry route not registered")
	}
	h, _, _ = router.Lookup(http.MethodPost, "/api/v1/gate/exit")
	if h == nil {
		t.Error("exit route not registered")
	}
}
