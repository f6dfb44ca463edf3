package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"parkgate/internal/gate/service"
	ledgererrors "parkgate/internal/ledger/errors"
	ledgerservice "parkgate/internal/ledger/service"
	registryerrors "parkgate/internal/registry/errors"
	registryservice "parkgate/internal/registry/service"
	apperrors "parkgate/pkg/errors"
	httputil "parkgate/pkg/http"
	"parkgate/pkg/logger"
	"parkgate/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type GateHandler struct {
	gate     service.Gate
	registry registryservice.Registry
	ledger   ledgerservice.Ledger
	log      *logger.Logger
}

func NewGateHandler(gate service.Gate, registry registryservice.Registry, ledger ledgerservice.Ledger, log *logger.Logger) *GateHandler {
	return &GateHandler{
		gate:     gate,
		registry: registry,
		ledger:   ledger,
		log:      log,
	}
}

// writeError translates the store-level not-found sentinels for the read
// endpoints; everything else passes through as-is.
func (h *GateHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrSpotNotFound):
		err = apperrors.NotFound("spot")
	case errors.Is(err, ledgererrors.ErrSessionNotFound):
		err = apperrors.NotFound("session")
	case errors.Is(err, ledgererrors.ErrReceiptNotFound):
		err = apperrors.NotFound("receipt")
	}

	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *GateHandler) Entry(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Entry", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.gate.Entry(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Entry", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Entry", "operation", "WriteCreated", "error", err)
	}
}

func (h *GateHandler) Exit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Exit", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.gate.Exit(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Exit", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Exit", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GateHandler) GetSpot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	spot, err := h.registry.Status(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetSpot", err)
		return
	}

	if err := httputil.WriteSuccess(w, spot); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSpot", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GateHandler) ListSpots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListSpots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	spots, total, err := h.registry.ListSpots(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListSpots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, spots, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListSpots", "operation", "WritePaginated", "error", err)
	}
}

func (h *GateHandler) GetSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	session, err := h.ledger.GetSession(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetSession", err)
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSession", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GateHandler) GetActiveSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	vehicleID := ps.ByName("vehicle_id")

	session, err := h.ledger.FindActive(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, ledgererrors.ErrNoActiveSession) {
			err = apperrors.NotFound("active session")
		}
		h.writeError(w, "GetActiveSession", err)
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "GetActiveSession", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GateHandler) ListSessions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListSessions", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	sessions, total, err := h.ledger.ListSessions(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListSessions", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, sessions, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListSessions", "operation", "WritePaginated", "error", err)
	}
}

func (h *GateHandler) GetReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("session_id")

	receipt, err := h.ledger.GetReceipt(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, "GetReceipt", err)
		return
	}

	if err := httputil.WriteSuccess(w, receipt); err != nil {
		h.log.Error("failed to write success response", "handler", "GetReceipt", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GateHandler) Occupancy(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	total, available, err := h.registry.Occupancy(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Occupancy", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	payload := map[string]int64{
		"total":     total,
		"available": available,
		"occupied":  total - available,
	}
	if err := httputil.WriteSuccess(w, payload); err != nil {
		h.log.Error("failed to write success response", "handler", "Occupancy", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GateHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/gate/entry", h.Entry)
	router.POST("/api/v1/gate/exit", h.Exit)
	router.GET("/api/v1/spots", h.ListSpots)
	router.GET("/api/v1/spots/id/:id", h.GetSpot)
	router.GET("/api/v1/spots/occupancy", h.Occupancy)
	router.GET("/api/v1/sessions", h.ListSessions)
	router.GET("/api/v1/sessions/id/:id", h.GetSession)
	router.GET("/api/v1/sessions/active/:vehicle_id", h.GetActiveSession)
	router.GET("/api/v1/receipts/session/:session_id", h.GetReceipt)
}
