package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Subteran/DunGen-sub001/internal/engine"
	"github.com/Subteran/DunGen-sub001/internal/storage"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateGameRequest defines the request body for starting a new adventure.
type CreateGameRequest struct {
	PCID     string `json:"pc_id"`              // Required: character spec filename (without .json)
	Location string `json:"location,omitempty"` // Optional: starting location
	Goal     string `json:"goal,omitempty"`     // Optional: quest goal text
}

const defaultLocation = "a torchlit dungeon entrance"

// GameHandler manages adventure lifecycle.
type GameHandler struct {
	engine  *engine.Engine
	storage storage.Storage
	logger  *slog.Logger
}

func NewGameHandler(eng *engine.Engine, storage storage.Storage, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		engine:  eng,
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for adventure lifecycle operations.
// Routes:
// POST /v1/games        - Start a new adventure
// GET /v1/games/{id}    - Read game state by ID
// DELETE /v1/games/{id} - Delete game state by ID
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/games")
	var gameID uuid.UUID
	var err error

	if path != "" && path != "/" {
		idStr := strings.Trim(path, "/")
		gameID, err = uuid.Parse(idStr)
		if err != nil {
			h.logger.Warn("Invalid game ID", "id", idStr, "error", err)
			writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
			return
		}
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)

	case http.MethodGet:
		if gameID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Game ID is required for GET requests")
			return
		}
		h.handleRead(w, r, gameID)

	case http.MethodDelete:
		if gameID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Game ID is required for DELETE requests")
			return
		}
		h.handleDelete(w, r, gameID)

	default:
		h.logger.Warn("Method not allowed for games endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET, DELETE")
	}
}

func (h *GameHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Starting new adventure")

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if req.PCID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "pc_id is required")
		return
	}

	spec, err := h.storage.GetPCSpec(r.Context(), req.PCID)
	if err != nil {
		if errors.Is(err, storage.ErrPCNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Character not found: "+req.PCID)
			return
		}
		h.logger.Error("Failed to load PC spec", "pc_id", req.PCID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load character")
		return
	}

	if req.Location == "" {
		req.Location = defaultLocation
	}

	gs, err := h.engine.NewAdventure(r.Context(), spec, req.Location, req.Goal)
	if err != nil {
		h.logger.Error("Failed to start adventure", "pc_id", req.PCID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to start adventure")
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(gs); err != nil {
		h.logger.Error("Failed to encode game state", "error", err)
	}
}

func (h *GameHandler) handleRead(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	gs, err := h.storage.LoadGameState(r.Context(), gameID)
	if err != nil {
		h.logger.Error("Failed to load game state", "game_id", gameID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game state")
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return
	}

	if err := json.NewEncoder(w).Encode(gs); err != nil {
		h.logger.Error("Failed to encode game state", "error", err)
	}
}

func (h *GameHandler) handleDelete(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	if err := h.storage.DeleteGameState(r.Context(), gameID); err != nil {
		h.logger.Error("Failed to delete game state", "game_id", gameID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete game state")
		return
	}
	h.engine.Forget(gameID)
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}
