package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/Subteran/DunGen-sub001/internal/engine"
	"github.com/Subteran/DunGen-sub001/internal/services"
	"github.com/Subteran/DunGen-sub001/internal/storage"
	"github.com/Subteran/DunGen-sub001/pkg/actor"
	"github.com/Subteran/DunGen-sub001/pkg/procgen"
	"github.com/Subteran/DunGen-sub001/pkg/state"
)

func testFixtures(t *testing.T, mock *services.MockGenerator) (*engine.Engine, *storage.MockStorage) {
	t.Helper()
	store := storage.NewMockStorage()
	store.PCSpecs["tharn"] = &actor.PCSpec{
		ID:     "tharn",
		Name:   "Tharn",
		Class:  "Ranger",
		Attack: 5,
	}
	eng := engine.New(mock, store, procgen.DefaultTables(), engine.Config{Seed: 42}, testLogger())
	return eng, store
}

func TestGameHandler_Create(t *testing.T) {
	eng, store := testFixtures(t, services.NewMockGenerator())
	handler := NewGameHandler(eng, store, testLogger())

	body, _ := json.Marshal(CreateGameRequest{
		PCID:     "tharn",
		Location: "Blackmire Caverns",
		Goal:     "Defeat the bandit leader",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/games", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var gs state.GameState
	if err := json.NewDecoder(w.Body).Decode(&gs); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if gs.ID == uuid.Nil {
		t.Error("expected non-nil game ID")
	}
	if gs.Quest == nil {
		t.Fatal("expected an active quest")
	}
	if gs.PC == nil || gs.PC.Spec.Name != "Tharn" {
		t.Error("expected PC built from the requested spec")
	}
	if store.SaveCalls() != 1 {
		t.Errorf("save calls = %d, want 1", store.SaveCalls())
	}
}

func TestGameHandler_CreateValidation(t *testing.T) {
	eng, store := testFixtures(t, services.NewMockGenerator())
	handler := NewGameHandler(eng, store, testLogger())

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "invalid json",
			body:           `{"pc_id": `,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing pc_id",
			body:           `{"location":"somewhere"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown pc",
			body:           `{"pc_id":"nobody"}`,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/games", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestGameHandler_ReadAndDelete(t *testing.T) {
	eng, store := testFixtures(t, services.NewMockGenerator())
	handler := NewGameHandler(eng, store, testLogger())

	spec, _ := store.GetPCSpec(context.Background(), "tharn")
	gs, err := eng.NewAdventure(context.Background(), spec, "Blackmire Caverns", "Find the lost amulet")
	if err != nil {
		t.Fatalf("NewAdventure: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/games/"+gs.ID.String(), nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want %d", w.Code, http.StatusOK)
	}
	var got state.GameState
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.ID != gs.ID {
		t.Errorf("game ID = %s, want %s", got.ID, gs.ID)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/games/"+gs.ID.String(), nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", w.Code, http.StatusNoContent)
	}

	loaded, err := store.LoadGameState(context.Background(), gs.ID)
	if err != nil {
		t.Fatalf("LoadGameState: %v", err)
	}
	if loaded != nil {
		t.Error("expected game state to be deleted")
	}
}

func TestGameHandler_ReadErrors(t *testing.T) {
	eng, store := testFixtures(t, services.NewMockGenerator())
	handler := NewGameHandler(eng, store, testLogger())

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{
			name:           "invalid id",
			path:           "/v1/games/not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing id",
			path:           "/v1/games",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "not found",
			path:           "/v1/games/" + uuid.New().String(),
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestGameHandler_MethodNotAllowed(t *testing.T) {
	eng, store := testFixtures(t, services.NewMockGenerator())
	handler := NewGameHandler(eng, store, testLogger())

	req := httptest.NewRequest(http.MethodPut, "/v1/games", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
