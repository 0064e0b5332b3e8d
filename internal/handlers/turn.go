package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Subteran/DunGen-sub001/internal/engine"
	"github.com/Subteran/DunGen-sub001/internal/services"
	"github.com/Subteran/DunGen-sub001/internal/storage"
	"github.com/Subteran/DunGen-sub001/pkg/chat"
)

// TurnHandler runs player turns through the orchestration engine.
type TurnHandler struct {
	engine  *engine.Engine
	storage storage.Storage
	logger  *slog.Logger
}

func NewTurnHandler(eng *engine.Engine, storage storage.Storage, logger *slog.Logger) *TurnHandler {
	return &TurnHandler{
		engine:  eng,
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles POST /v1/turn. The turn either commits fully or
// leaves the stored game state untouched, so a failed request is safe
// to retry.
func (h *TurnHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for turn endpoint",
			"method", r.Method,
			"path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var req chat.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'game_id' and 'action' fields.")
		return
	}

	if req.GameID == uuid.Nil {
		writeError(w, h.logger, http.StatusBadRequest, "game_id is required")
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.Warn("Invalid turn request", "game_id", req.GameID, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	gs, err := h.storage.LoadGameState(r.Context(), req.GameID)
	if err != nil {
		h.logger.Error("Failed to load game state", "game_id", req.GameID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game state")
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return
	}

	result, err := h.engine.AdvanceTurn(r.Context(), gs, req.Action)
	if err != nil {
		h.writeTurnError(w, req.GameID, err)
		return
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("Failed to encode turn result", "game_id", req.GameID, "error", err)
	}
}

// writeTurnError maps engine failures to HTTP statuses. Generator
// outages are retryable; the turn was not committed.
func (h *TurnHandler) writeTurnError(w http.ResponseWriter, gameID uuid.UUID, err error) {
	switch {
	case errors.Is(err, engine.ErrNoActiveQuest):
		h.logger.Warn("Turn on finished adventure", "game_id", gameID)
		writeError(w, h.logger, http.StatusConflict, "No active quest. Start a new adventure.")

	case services.IsKind(err, services.ErrUnavailable):
		h.logger.Warn("Generator unavailable", "game_id", gameID, "error", err)
		writeError(w, h.logger, http.StatusServiceUnavailable, "The storyteller is unavailable. Try again shortly.")

	case services.IsKind(err, services.ErrRefused):
		h.logger.Warn("Generator refused turn", "game_id", gameID, "error", err)
		writeError(w, h.logger, http.StatusUnprocessableEntity, "The storyteller declined that action. Try something else.")

	default:
		h.logger.Error("Turn failed", "game_id", gameID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to process turn")
	}
}
