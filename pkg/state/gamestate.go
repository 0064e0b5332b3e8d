package state

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Subteran/DunGen-sub001/pkg/actor"
	"github.com/Subteran/DunGen-sub001/pkg/encounter"
	"github.com/Subteran/DunGen-sub001/pkg/quest"
	"github.com/Subteran/DunGen-sub001/pkg/variety"
)

const (
	// RecentActionLimit bounds the action log carried in prompts.
	RecentActionLimit = 5

	// EncounterRingCapacity bounds the encounter type history.
	EncounterRingCapacity = 3

	// AffixRingCapacity bounds the affix name history.
	AffixRingCapacity = 10

	// NPCRingCapacity bounds the recently used NPC history.
	NPCRingCapacity = 4
)

// SocialExchange tracks an open conversation with an NPC. While the
// exchange is open and under its turn cap, successive turns stay in the
// same social encounter instead of deriving a new one.
type SocialExchange struct {
	Partner string `json:"partner"`
	Turns   int    `json:"turns"`
	TurnCap int    `json:"turn_cap"`
}

// Open reports whether the exchange should absorb the next turn.
func (se *SocialExchange) Open() bool {
	return se != nil && se.Partner != "" && se.Turns < se.TurnCap
}

// AdventureRecord is the archived summary of a finished quest.
type AdventureRecord struct {
	Goal       string    `json:"goal"`
	Location   string    `json:"location"`
	Encounters int       `json:"encounters"`
	Completed  bool      `json:"completed"`
	FinishedAt time.Time `json:"finished_at"`
}

// GameState is the complete serializable snapshot of one game session.
// Exactly one turn is in flight at a time; the turn orchestrator owns
// the active snapshot and commits a mutated deep copy only after the
// full turn pipeline succeeds.
type GameState struct {
	ID       uuid.UUID `json:"id"`
	PC       *actor.PC `json:"pc"`
	Location string    `json:"location,omitempty"`

	Quest          *quest.Quest    `json:"quest,omitempty"`
	PendingMonster *actor.Monster  `json:"pending_monster,omitempty"`
	Exchange       *SocialExchange `json:"exchange,omitempty"`

	NPCs map[string]actor.NPC `json:"npcs,omitempty"`

	EncounterHistory *variety.Ring[encounter.Type] `json:"encounter_history"`
	AffixHistory     *variety.Ring[string]         `json:"affix_history"`
	NPCHistory       *variety.Ring[string]         `json:"npc_history"`

	TurnCount       int                    `json:"turn_count"`
	RecentActions   []string               `json:"recent_actions,omitempty"`
	EncounterCounts map[encounter.Type]int `json:"encounter_counts,omitempty"`

	Archive []AdventureRecord `json:"archive,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGameState creates a fresh session snapshot for a character.
func NewGameState(pc *actor.PC, location string) *GameState {
	now := time.Now().UTC()
	return &GameState{
		ID:               uuid.New(),
		PC:               pc,
		Location:         location,
		NPCs:             make(map[string]actor.NPC),
		EncounterHistory: variety.NewRing[encounter.Type](EncounterRingCapacity),
		AffixHistory:     variety.NewRing[string](AffixRingCapacity),
		NPCHistory:       variety.NewRing[string](NPCRingCapacity),
		EncounterCounts:  make(map[encounter.Type]int),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// StartQuest begins a new quest for the current location.
func (gs *GameState) StartQuest(goal string, totalEncounters int) *quest.Quest {
	q := quest.New(goal, totalEncounters)
	gs.Quest = q
	return q
}

// ArchiveQuest moves the active quest into the adventure archive and
// clears quest-scoped turn state.
func (gs *GameState) ArchiveQuest() {
	if gs.Quest == nil {
		return
	}
	gs.Archive = append(gs.Archive, AdventureRecord{
		Goal:       gs.Quest.Goal,
		Location:   gs.Location,
		Encounters: gs.Quest.CurrentEncounter,
		Completed:  gs.Quest.Completed,
		FinishedAt: time.Now().UTC(),
	})
	gs.Quest = nil
	gs.PendingMonster = nil
	gs.Exchange = nil
}

// RecordAction appends a player action to the bounded recent log.
func (gs *GameState) RecordAction(action string) {
	gs.RecentActions = append(gs.RecentActions, action)
	if len(gs.RecentActions) > RecentActionLimit {
		gs.RecentActions = gs.RecentActions[len(gs.RecentActions)-RecentActionLimit:]
	}
}

// RecordEncounter updates the history ring and the per-type tally.
func (gs *GameState) RecordEncounter(t encounter.Type) {
	gs.EncounterHistory.Record(t)
	if gs.EncounterCounts == nil {
		gs.EncounterCounts = make(map[encounter.Type]int)
	}
	gs.EncounterCounts[t]++
}

// DeepCopy returns an independent copy of the snapshot. Turn mutation
// happens on the copy; the original stays authoritative until commit.
func (gs *GameState) DeepCopy() (*GameState, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, err
	}
	var out GameState
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
