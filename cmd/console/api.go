package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/google/uuid"

	"github.com/Subteran/DunGen-sub001/pkg/actor"
	"github.com/Subteran/DunGen-sub001/pkg/chat"
	"github.com/Subteran/DunGen-sub001/pkg/state"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// listPCs fetches the available character specs and builds display
// names ("Tharn (Level 3 Ranger)") mapped back to spec IDs.
func listPCs(client *http.Client, baseURL string) ([]string, map[string]string, error) {
	resp, err := client.Get(baseURL + "/v1/pcs")
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	var list struct {
		PCs []string `json:"pcs"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, nil, err
	}

	pcMap := make(map[string]string)
	var names []string
	for _, id := range list.PCs {
		spec, err := getPCSpec(client, baseURL, id)
		if err != nil {
			continue
		}
		displayName := spec.Name
		if displayName == "" {
			displayName = id
		}
		if spec.Class != "" {
			if spec.Level > 0 {
				displayName = fmt.Sprintf("%s (Level %d %s)", displayName, spec.Level, spec.Class)
			} else {
				displayName = fmt.Sprintf("%s (%s)", displayName, spec.Class)
			}
		}
		names = append(names, displayName)
		pcMap[displayName] = id
	}

	sort.Strings(names)
	return names, pcMap, nil
}

func getPCSpec(client *http.Client, baseURL string, pcID string) (*actor.PCSpec, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/pcs/%s", baseURL, pcID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to get character: %s", errorResp.Error)
	}

	var spec actor.PCSpec
	if err := json.Unmarshal(body, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse character response: %w", err)
	}
	return &spec, nil
}

// CreateGameRequest matches the API request structure
type CreateGameRequest struct {
	PCID     string `json:"pc_id"`
	Location string `json:"location,omitempty"`
	Goal     string `json:"goal,omitempty"`
}

func createGame(client *http.Client, baseURL string, pcID, goal string) (*state.GameState, error) {
	req := CreateGameRequest{
		PCID: pcID,
		Goal: goal,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/games",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to create game: %s", errorResp.Error)
	}

	var createdGame state.GameState
	if err := json.Unmarshal(body, &createdGame); err != nil {
		return nil, fmt.Errorf("failed to parse game state response: %w", err)
	}

	return &createdGame, nil
}

func getGameState(client *http.Client, baseURL string, gameID uuid.UUID) (*state.GameState, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/games/%s", baseURL, gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to get game state: %s", errorResp.Error)
	}

	var gameState state.GameState
	if err := json.Unmarshal(body, &gameState); err != nil {
		return nil, fmt.Errorf("failed to parse game state response: %w", err)
	}
	return &gameState, nil
}

func sendTurn(client *http.Client, baseURL string, gameID uuid.UUID, action string) (*state.TurnResult, error) {
	turnReq := chat.TurnRequest{
		GameID: gameID,
		Action: action,
	}

	jsonData, err := json.Marshal(turnReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/turn",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("turn failed: %s", errorResp.Error)
	}

	var result state.TurnResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse turn response: %w", err)
	}
	return &result, nil
}
