package chat

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	ChatRoleUser   = "user"
	ChatRoleAgent  = "assistant"
	ChatRoleSystem = "system"
)

// ChatMessage is a single message in a generator conversation.
// The shape follows the common chat-completion APIs.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// MaxActionLength bounds the free-text player action. Longer input is
// rejected upstream of the engine.
const MaxActionLength = 500

// TurnRequest is a player action submitted to the turn endpoint.
type TurnRequest struct {
	GameID uuid.UUID `json:"game_id"`
	Action string    `json:"action"`
}

func (tr *TurnRequest) Validate() error {
	if tr.Action == "" {
		return fmt.Errorf("action cannot be empty")
	}
	if len(tr.Action) > MaxActionLength {
		return fmt.Errorf("action exceeds %d characters", MaxActionLength)
	}
	return nil
}
