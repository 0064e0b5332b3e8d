package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Subteran/DunGen-sub001/internal/storage"
)

// PCHandler serves the character specs available for new adventures.
type PCHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewPCHandler(storage storage.Storage, logger *slog.Logger) *PCHandler {
	return &PCHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for character specs.
// Routes:
// GET /v1/pcs      - List available character IDs
// GET /v1/pcs/{id} - Read a character spec by ID
func (h *PCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	pcID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/pcs"), "/")
	if pcID == "" {
		h.handleList(w, r)
		return
	}
	h.handleRead(w, r, pcID)
}

func (h *PCHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.storage.ListPCs(r.Context())
	if err != nil {
		h.logger.Error("Failed to list PCs", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list characters")
		return
	}

	if err := json.NewEncoder(w).Encode(map[string][]string{"pcs": ids}); err != nil {
		h.logger.Error("Failed to encode PC list", "error", err)
	}
}

func (h *PCHandler) handleRead(w http.ResponseWriter, r *http.Request, pcID string) {
	spec, err := h.storage.GetPCSpec(r.Context(), pcID)
	if err != nil {
		if errors.Is(err, storage.ErrPCNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Character not found: "+pcID)
			return
		}
		h.logger.Error("Failed to load PC spec", "pc_id", pcID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load character")
		return
	}

	if err := json.NewEncoder(w).Encode(spec); err != nil {
		h.logger.Error("Failed to encode PC spec", "error", err)
	}
}
