package state

import (
	"github.com/Subteran/DunGen-sub001/pkg/actor"
	"github.com/Subteran/DunGen-sub001/pkg/encounter"
)

// PendingKind classifies the entity the player must react to next turn.
type PendingKind string

const (
	PendingOpponent PendingKind = "opponent"
	PendingPartner  PendingKind = "partner"
	PendingHazard   PendingKind = "hazard"
)

// PendingEntity is the thing the narrative left the player facing.
type PendingEntity struct {
	Kind PendingKind `json:"kind"`
	Name string      `json:"name"`
}

// TurnReward is the deterministic payout applied during the turn.
type TurnReward struct {
	XP       int         `json:"xp"`
	Gold     int         `json:"gold"`
	LevelsUp int         `json:"levels_up,omitempty"`
	Loot     *actor.Item `json:"loot,omitempty"`
}

// TurnResult is what a successfully committed turn hands to the
// presentation layer.
type TurnResult struct {
	Narrative        string         `json:"narrative"`
	SuggestedActions []string       `json:"suggested_actions,omitempty"`
	Pending          *PendingEntity `json:"pending,omitempty"`
	EncounterType    encounter.Type `json:"encounter_type,omitempty"`
	Reward           *TurnReward    `json:"reward,omitempty"`
	QuestCompleted   bool           `json:"quest_completed,omitempty"`
	QuestFailed      bool           `json:"quest_failed,omitempty"`
	GameState        *GameState     `json:"game_state,omitempty"`
}
